package familytrees_test

import (
	"context"

	. "github.com/hieungocdinh/mad-project-n16/familytrees"
	"github.com/hieungocdinh/mad-project-n16/store"
	"github.com/hieungocdinh/mad-project-n16/store/mocks"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

var _ = Describe("Service", func() {

	var (
		ctx         = context.Background()
		treeService Service

		mockStore *mocks.MockStore

		returnedError error
	)

	var (
		assertNoError = func() {
			It("should not return an error", func() {
				Expect(returnedError).To(BeNil())
			})
		}
		assertErrorWithCause = func(cause error) {
			It("should return an error", func() {
				Expect(returnedError).NotTo(BeNil())
				Expect(errors.Cause(returnedError)).To(Equal(cause))
			})
		}
	)

	BeforeEach(func() {
		mockStore = &mocks.MockStore{}
		treeService = &FamilyTreeService{
			Store: mockStore,
		}
	})

	Context("SaveFamilyTree", func() {

		var (
			savedTree store.FamilyTree
			request   FamilyTreeTransport

			existingLinks []store.FamilyTreeFamily
		)

		BeforeEach(func() {
			request = FamilyTreeTransport{
				Id:   20,
				Name: "Nguyen lineage",
				Families: []TreeLinkTransport{
					{FamilyId: 1, Generation: 1},
					{FamilyId: 3, Generation: 3},
				},
			}
			existingLinks = []store.FamilyTreeFamily{
				{LinkId: 100, FamilyTreeId: 20, FamilyId: 1, Generation: 1},
				{LinkId: 101, FamilyTreeId: 20, FamilyId: 2, Generation: 2},
			}
		})

		JustBeforeEach(func() {
			savedTree, returnedError = treeService.SaveFamilyTree(ctx, request)
		})

		Context("when the linked families change", func() {

			BeforeEach(func() {
				mockStore.On("UpdateFamilyTree", mock.Anything).Return(store.FamilyTree{FamilyTreeId: 20}, nil)
				mockStore.On("FindTreeLinks", int64(20)).Return(existingLinks, nil).Once()
				mockStore.On("DeleteTreeLinks", []store.FamilyTreeFamily{
					{LinkId: 101, FamilyTreeId: 20, FamilyId: 2, Generation: 2},
				}).Return(nil)
				mockStore.On("AddTreeLinks", []store.FamilyTreeFamily{
					{FamilyTreeId: 20, FamilyId: 3, Generation: 3},
				}).Return(nil)
				mockStore.On("FindTreeLinks", int64(20)).Return([]store.FamilyTreeFamily{
					{LinkId: 100, FamilyTreeId: 20, FamilyId: 1, Generation: 1},
					{LinkId: 102, FamilyTreeId: 20, FamilyId: 3, Generation: 3},
				}, nil).Once()
			})

			assertNoError()

			It("should remove only the link that is no longer requested", func() {
				mockStore.AssertCalled(GinkgoT(), "DeleteTreeLinks", []store.FamilyTreeFamily{
					{LinkId: 101, FamilyTreeId: 20, FamilyId: 2, Generation: 2},
				})
			})

			It("should add only the link that did not exist", func() {
				mockStore.AssertCalled(GinkgoT(), "AddTreeLinks", []store.FamilyTreeFamily{
					{FamilyTreeId: 20, FamilyId: 3, Generation: 3},
				})
			})

			It("should return the tree with the reconciled links", func() {
				Expect(savedTree.FamilyTreeId).To(Equal(int64(20)))
				Expect(savedTree.Links).To(HaveLen(2))
			})
		})

		Context("when the requested links equal the persisted ones", func() {

			BeforeEach(func() {
				request.Families = []TreeLinkTransport{
					{FamilyId: 1, Generation: 1},
					{FamilyId: 2, Generation: 2},
				}
				mockStore.On("UpdateFamilyTree", mock.Anything).Return(store.FamilyTree{FamilyTreeId: 20}, nil)
				mockStore.On("FindTreeLinks", int64(20)).Return(existingLinks, nil)
			})

			assertNoError()

			It("should not write anything", func() {
				mockStore.AssertNotCalled(GinkgoT(), "DeleteTreeLinks", mock.Anything)
				mockStore.AssertNotCalled(GinkgoT(), "AddTreeLinks", mock.Anything)
			})
		})

		Context("when no link is requested", func() {

			BeforeEach(func() {
				request.Families = []TreeLinkTransport{}
				mockStore.On("UpdateFamilyTree", mock.Anything).Return(store.FamilyTree{FamilyTreeId: 20}, nil)
				mockStore.On("FindTreeLinks", int64(20)).Return(existingLinks, nil).Once()
				mockStore.On("DeleteTreeLinks", existingLinks).Return(nil)
				mockStore.On("FindTreeLinks", int64(20)).Return([]store.FamilyTreeFamily{}, nil).Once()
			})

			assertNoError()

			It("should clear every persisted link", func() {
				mockStore.AssertCalled(GinkgoT(), "DeleteTreeLinks", existingLinks)
				mockStore.AssertNotCalled(GinkgoT(), "AddTreeLinks", mock.Anything)
			})
		})

		Context("when the same link is requested twice", func() {

			BeforeEach(func() {
				request.Families = []TreeLinkTransport{
					{FamilyId: 3, Generation: 3},
					{FamilyId: 3, Generation: 3},
				}
				mockStore.On("UpdateFamilyTree", mock.Anything).Return(store.FamilyTree{FamilyTreeId: 20}, nil)
				mockStore.On("FindTreeLinks", int64(20)).Return([]store.FamilyTreeFamily{}, nil).Once()
				mockStore.On("AddTreeLinks", []store.FamilyTreeFamily{
					{FamilyTreeId: 20, FamilyId: 3, Generation: 3},
				}).Return(nil)
				mockStore.On("FindTreeLinks", int64(20)).Return([]store.FamilyTreeFamily{
					{LinkId: 103, FamilyTreeId: 20, FamilyId: 3, Generation: 3},
				}, nil).Once()
			})

			assertNoError()

			It("should persist the link only once", func() {
				mockStore.AssertCalled(GinkgoT(), "AddTreeLinks", []store.FamilyTreeFamily{
					{FamilyTreeId: 20, FamilyId: 3, Generation: 3},
				})
			})
		})

		Context("when the requested id is unknown", func() {

			BeforeEach(func() {
				mockStore.On("UpdateFamilyTree", mock.Anything).Return(store.FamilyTree{}, store.ErrFamilyTreeNotFound)
				mockStore.On("AddFamilyTree", mock.Anything).Return(store.FamilyTree{FamilyTreeId: 21}, nil)
				mockStore.On("FindTreeLinks", int64(21)).Return([]store.FamilyTreeFamily{}, nil).Once()
				mockStore.On("AddTreeLinks", mock.Anything).Return(nil)
				mockStore.On("FindTreeLinks", int64(21)).Return([]store.FamilyTreeFamily{
					{LinkId: 104, FamilyTreeId: 21, FamilyId: 1, Generation: 1},
					{LinkId: 105, FamilyTreeId: 21, FamilyId: 3, Generation: 3},
				}, nil).Once()
			})

			assertNoError()

			It("should fall back to creating the tree", func() {
				Expect(savedTree.FamilyTreeId).To(Equal(int64(21)))
				mockStore.AssertCalled(GinkgoT(), "AddFamilyTree", mock.Anything)
			})
		})

		Context("when the link write fails", func() {

			BeforeEach(func() {
				mockStore.On("UpdateFamilyTree", mock.Anything).Return(store.FamilyTree{FamilyTreeId: 20}, nil)
				mockStore.On("FindTreeLinks", int64(20)).Return([]store.FamilyTreeFamily{}, nil)
				mockStore.On("AddTreeLinks", mock.Anything).Return(errors.New("insert failed"))
			})

			It("should surface the error", func() {
				Expect(returnedError).NotTo(BeNil())
			})
		})
	})

	Context("GetFamilyTree", func() {

		var (
			tree store.FamilyTree
		)

		JustBeforeEach(func() {
			tree, returnedError = treeService.GetFamilyTree(ctx, FamilyTreeTransport{Id: 20})
		})

		Context("when the tree does not exist", func() {

			BeforeEach(func() {
				mockStore.On("GetFamilyTree", int64(20)).Return(store.FamilyTree{}, store.ErrFamilyTreeNotFound)
			})

			assertErrorWithCause(store.ErrFamilyTreeNotFound)

			It("should return an empty tree", func() {
				Expect(tree).To(Equal(store.FamilyTree{}))
			})
		})
	})
})
