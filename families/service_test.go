package families_test

import (
	"context"

	. "github.com/hieungocdinh/mad-project-n16/families"
	. "github.com/hieungocdinh/mad-project-n16/storage/mocks"
	"github.com/hieungocdinh/mad-project-n16/store"
	"github.com/hieungocdinh/mad-project-n16/store/mocks"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

var _ = Describe("Service", func() {

	var (
		ctx           = context.Background()
		familyService Service

		mockStore   *mocks.MockStore
		mockStorage *MockStorage

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

	var (
		husband = store.User{UserId: 1, Username: store.DbNullString("giangnguyen")}
		wife    = store.User{UserId: 2, Username: store.DbNullString("lanpham")}
		child1  = store.User{UserId: 3, Username: store.DbNullString("minhnguyen")}
		child2  = store.User{UserId: 4, Username: store.DbNullString("thunguyen")}
	)

	BeforeEach(func() {
		mockStore = &mocks.MockStore{}
		mockStorage = &MockStorage{}
		familyService = &FamilyService{
			Store:   mockStore,
			Storage: mockStorage,
		}
	})

	Context("AddFamily", func() {

		var (
			createdFamily store.Family
			droppedIds    []int64
			request       FamilyTransport
		)

		BeforeEach(func() {
			request = FamilyTransport{
				Name:      "Nguyen Van",
				HusbandId: 1,
				WifeId:    2,
				ChildIds:  []int64{3, 4},
			}
		})

		JustBeforeEach(func() {
			createdFamily, droppedIds, returnedError = familyService.AddFamily(ctx, request)
		})

		Context("default", func() {

			BeforeEach(func() {
				mockStore.On("GetUser", int64(1)).Return(husband, nil)
				mockStore.On("GetUser", int64(2)).Return(wife, nil)
				mockStore.On("GetUser", int64(3)).Return(child1, nil)
				mockStore.On("GetUser", int64(4)).Return(child2, nil)
				mockStore.On("AddFamily", mock.Anything).Return(store.Family{
					FamilyId: 10,
					Name:     store.DbNullString("Nguyen Van"),
					Status:   store.STATUS_PENDING,
					ChildIds: []int64{3, 4},
				}, nil)
				mockStore.On("SetFamilyMembers", int64(10), []int64{3, 4, 1, 2}).Return(nil)
			})

			assertNoError()

			It("should create the family pending review", func() {
				Expect(createdFamily.FamilyId).To(Equal(int64(10)))
				Expect(createdFamily.Status).To(Equal(store.STATUS_PENDING))
			})

			It("should link every resolved member on both sides", func() {
				Expect(createdFamily.Members).To(HaveLen(4))
				for _, member := range createdFamily.Members {
					Expect(member.Families).NotTo(BeEmpty())
					Expect(member.Families[len(member.Families)-1].FamilyId).To(Equal(int64(10)))
				}
				mockStore.AssertCalled(GinkgoT(), "SetFamilyMembers", int64(10), []int64{3, 4, 1, 2})
			})

			It("should not drop any member id", func() {
				Expect(droppedIds).To(BeEmpty())
			})

			It("should run the writes in one committed transaction", func() {
				Expect(mockStore.TxCount).To(Equal(1))
				Expect(mockStore.CommitCount).To(Equal(1))
				Expect(mockStore.RollbackCount).To(BeZero())
			})
		})

		Context("when a child id does not resolve", func() {

			BeforeEach(func() {
				request.ChildIds = []int64{3, 99}
				mockStore.On("GetUser", int64(1)).Return(husband, nil)
				mockStore.On("GetUser", int64(2)).Return(wife, nil)
				mockStore.On("GetUser", int64(3)).Return(child1, nil)
				mockStore.On("GetUser", int64(99)).Return(store.User{}, store.ErrUserNotFound)
				mockStore.On("AddFamily", mock.Anything).Return(store.Family{
					FamilyId: 10,
					Status:   store.STATUS_PENDING,
					ChildIds: []int64{3, 99},
				}, nil)
				mockStore.On("SetFamilyMembers", int64(10), []int64{3, 1, 2}).Return(nil)
			})

			assertNoError()

			It("should drop the unresolved id and link the rest", func() {
				Expect(droppedIds).To(Equal([]int64{99}))
				Expect(createdFamily.Members).To(HaveLen(3))
				mockStore.AssertCalled(GinkgoT(), "SetFamilyMembers", int64(10), []int64{3, 1, 2})
			})
		})

		Context("when the partner lookup hits a transient store failure", func() {

			var storeFailure = errors.New("connection reset by peer")

			BeforeEach(func() {
				mockStore.On("GetUser", int64(1)).Return(store.User{}, storeFailure)
			})

			assertErrorWithCause(storeFailure)

			It("should not record a family without its partner", func() {
				mockStore.AssertNotCalled(GinkgoT(), "AddFamily", mock.Anything)
				Expect(mockStore.CommitCount).To(BeZero())
			})
		})

		Context("when a duplicated member id is requested", func() {

			BeforeEach(func() {
				request.ChildIds = []int64{3, 3}
				mockStore.On("GetUser", int64(1)).Return(husband, nil)
				mockStore.On("GetUser", int64(2)).Return(wife, nil)
				mockStore.On("GetUser", int64(3)).Return(child1, nil)
				mockStore.On("AddFamily", mock.Anything).Return(store.Family{
					FamilyId: 10,
					Status:   store.STATUS_PENDING,
					ChildIds: []int64{3, 3},
				}, nil)
				mockStore.On("SetFamilyMembers", int64(10), []int64{3, 1, 2}).Return(nil)
			})

			assertNoError()

			It("should link the member only once", func() {
				Expect(createdFamily.Members).To(HaveLen(3))
				mockStore.AssertCalled(GinkgoT(), "SetFamilyMembers", int64(10), []int64{3, 1, 2})
			})
		})

		Context("when the husband is also listed as a child", func() {

			BeforeEach(func() {
				request.ChildIds = []int64{1, 3}
				mockStore.On("GetUser", int64(1)).Return(husband, nil)
				mockStore.On("GetUser", int64(2)).Return(wife, nil)
			})

			assertErrorWithCause(ErrPartnerIsChild)

			It("should not create anything", func() {
				mockStore.AssertNotCalled(GinkgoT(), "AddFamily", mock.Anything)
			})
		})
	})

	Context("UpdateFamily", func() {

		var (
			updatedFamily store.Family
			droppedIds    []int64
			request       FamilyTransport
		)

		BeforeEach(func() {
			request = FamilyTransport{
				Id:        10,
				Name:      "Nguyen Van",
				HusbandId: 1,
				ChildIds:  []int64{3},
			}
		})

		JustBeforeEach(func() {
			updatedFamily, droppedIds, returnedError = familyService.UpdateFamily(ctx, request)
		})

		Context("default", func() {

			BeforeEach(func() {
				mockStore.On("GetFamily", int64(10)).Return(store.Family{
					FamilyId: 10,
					Status:   store.STATUS_ACCEPTED,
					ChildIds: []int64{4},
				}, nil)
				mockStore.On("GetUser", int64(1)).Return(husband, nil)
				mockStore.On("GetUser", int64(3)).Return(child1, nil)
				mockStore.On("ClearFamilyMembers", int64(10)).Return(nil)
				mockStore.On("UpdateFamily", mock.Anything).Return(store.Family{
					FamilyId: 10,
					Status:   store.STATUS_PENDING,
					ChildIds: []int64{3},
				}, nil)
				mockStore.On("SetFamilyMembers", int64(10), []int64{3, 1}).Return(nil)
			})

			assertNoError()

			It("should sever the old membership edges before relinking", func() {
				mockStore.AssertCalled(GinkgoT(), "ClearFamilyMembers", int64(10))
				mockStore.AssertCalled(GinkgoT(), "SetFamilyMembers", int64(10), []int64{3, 1})
			})

			It("should put the family back under review", func() {
				Expect(updatedFamily.Status).To(Equal(store.STATUS_PENDING))
			})

			It("should not drop any member id", func() {
				Expect(droppedIds).To(BeEmpty())
			})
		})

		Context("when the family does not exist", func() {

			BeforeEach(func() {
				mockStore.On("GetFamily", int64(10)).Return(store.Family{}, store.ErrFamilyNotFound)
			})

			assertErrorWithCause(store.ErrFamilyNotFound)

			It("should not touch the membership edges", func() {
				mockStore.AssertNotCalled(GinkgoT(), "ClearFamilyMembers", mock.Anything)
			})

			It("should roll the transaction back", func() {
				Expect(mockStore.RollbackCount).To(Equal(1))
				Expect(mockStore.CommitCount).To(BeZero())
			})
		})
	})

	Context("SuggestFamilies", func() {

		var (
			suggestions []string
		)

		JustBeforeEach(func() {
			suggestions, returnedError = familyService.SuggestFamilies(ctx, 5)
		})

		Context("default", func() {

			BeforeEach(func() {
				mockStore.On("GetUser", int64(5)).Return(store.User{UserId: 5}, nil)
				mockStore.On("GetProfileByUser", int64(5)).Return(store.Profile{
					UserId:   5,
					LastName: store.DbNullString("Nguyen"),
				}, nil)
				mockStore.On("ListFamilies").Return([]store.Family{
					{FamilyId: 10, Name: store.DbNullString("Nguyen Van"), Husband: &store.User{UserId: 1}},
					{FamilyId: 11, Name: store.DbNullString("No Husband")},
					{FamilyId: 12, Name: store.DbNullString("Tran Gia"), Husband: &store.User{UserId: 7}},
				}, nil)
				mockStore.On("GetProfileByUser", int64(1)).Return(store.Profile{
					UserId:   1,
					LastName: store.DbNullString("NGUYEN"),
				}, nil)
				mockStore.On("GetProfileByUser", int64(7)).Return(store.Profile{
					UserId:   7,
					LastName: store.DbNullString("Tran"),
				}, nil)
			})

			assertNoError()

			It("should suggest families whose husband shares the surname, ignoring case", func() {
				Expect(suggestions).To(Equal([]string{"Nguyen Van"}))
			})
		})

		Context("when the user does not exist", func() {

			BeforeEach(func() {
				mockStore.On("GetUser", int64(5)).Return(store.User{}, store.ErrUserNotFound)
			})

			assertNoError()

			It("should return no suggestion", func() {
				Expect(suggestions).To(BeEmpty())
			})
		})

		Context("when the user has no profile", func() {

			BeforeEach(func() {
				mockStore.On("GetUser", int64(5)).Return(store.User{UserId: 5}, nil)
				mockStore.On("GetProfileByUser", int64(5)).Return(store.Profile{}, store.ErrProfileNotFound)
			})

			assertNoError()

			It("should return no suggestion", func() {
				Expect(suggestions).To(BeEmpty())
			})
		})

		Context("when the user profile has no last name", func() {

			BeforeEach(func() {
				mockStore.On("GetUser", int64(5)).Return(store.User{UserId: 5}, nil)
				mockStore.On("GetProfileByUser", int64(5)).Return(store.Profile{UserId: 5}, nil)
			})

			assertNoError()

			It("should return no suggestion without scanning families", func() {
				Expect(suggestions).To(BeEmpty())
				mockStore.AssertNotCalled(GinkgoT(), "ListFamilies")
			})
		})
	})
})
