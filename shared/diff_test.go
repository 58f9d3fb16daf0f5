package shared_test

import (
	"github.com/hieungocdinh/mad-project-n16/shared"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Diff", func() {

	type row struct {
		Id  int
		Key string
	}

	rowKey := func(r row) string { return r.Key }
	strKey := func(s string) string { return s }

	It("should split the delta into deletions and additions", func() {
		existing := []row{{Id: 1, Key: "a"}, {Id: 2, Key: "b"}}
		desired := []string{"a", "c"}

		toDelete, toAdd := shared.Diff(existing, desired, rowKey, strKey)

		Expect(toDelete).To(Equal([]row{{Id: 2, Key: "b"}}))
		Expect(toAdd).To(Equal([]string{"c"}))
	})

	It("should leave unchanged keys out of both sides", func() {
		existing := []row{{Id: 1, Key: "a"}, {Id: 2, Key: "b"}}
		desired := []string{"a", "b"}

		toDelete, toAdd := shared.Diff(existing, desired, rowKey, strKey)

		Expect(toDelete).To(BeEmpty())
		Expect(toAdd).To(BeEmpty())
	})

	It("should delete everything when nothing is desired", func() {
		existing := []row{{Id: 1, Key: "a"}, {Id: 2, Key: "b"}}

		toDelete, toAdd := shared.Diff(existing, nil, rowKey, strKey)

		Expect(toDelete).To(Equal(existing))
		Expect(toAdd).To(BeEmpty())
	})

	It("should add everything when nothing exists", func() {
		desired := []string{"a", "b"}

		toDelete, toAdd := shared.Diff(nil, desired, rowKey, strKey)

		Expect(toDelete).To(BeEmpty())
		Expect(toAdd).To(Equal(desired))
	})

	It("should collapse duplicate desired keys", func() {
		desired := []string{"a", "a", "b"}

		_, toAdd := shared.Diff(nil, desired, rowKey, strKey)

		Expect(toAdd).To(Equal([]string{"a", "b"}))
	})

	It("should keep the first occurrence when duplicates overlap existing rows", func() {
		existing := []row{{Id: 1, Key: "a"}}
		desired := []string{"a", "b", "b"}

		toDelete, toAdd := shared.Diff(existing, desired, rowKey, strKey)

		Expect(toDelete).To(BeEmpty())
		Expect(toAdd).To(Equal([]string{"b"}))
	})
})
