package users_test

import (
	"context"

	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"
	"github.com/hieungocdinh/mad-project-n16/store/mocks"
	. "github.com/hieungocdinh/mad-project-n16/users"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendAccountCreatedEmail(ctx context.Context, email, username string) error {
	args := m.Called(email, username)
	return args.Error(0)
}

var _ = Describe("Service", func() {

	var (
		ctx         = context.Background()
		userService Service

		mockStore *mocks.MockStore
		mailer    *mockMailer

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
		mailer = &mockMailer{}
		userService = &UserService{
			Store:  mockStore,
			Mailer: mailer,
			Logger: shared.NewLogger("test"),
		}
	})

	Context("SaveUser", func() {

		var (
			savedUser store.User
			request   UserTransport
		)

		JustBeforeEach(func() {
			savedUser, returnedError = userService.SaveUser(ctx, request)
		})

		Context("when creating a user", func() {

			BeforeEach(func() {
				request = UserTransport{
					Username:  "giangnguyen",
					Email:     "giang@example.com",
					Password:  "s3cr3tpass",
					FamilyIds: []int64{10},
				}
				mockStore.On("AddUser", mock.Anything).Return(store.User{
					UserId:   5,
					Username: store.DbNullString("giangnguyen"),
					Email:    store.DbNullString("giang@example.com"),
					Roles:    store.Roles{{UserId: 5, Role: store.ROLE_USER}},
				}, nil)
				mockStore.On("AddProfile", mock.Anything).Return(store.Profile{ProfileId: 30, UserId: 5}, nil)
				mockStore.On("SetUserFamilies", int64(5), []int64{10}).Return(nil)
				mailer.On("SendAccountCreatedEmail", "giang@example.com", "giangnguyen").Return(nil)
			})

			assertNoError()

			It("should store a bcrypt hash, never the raw password", func() {
				call := mockStore.Calls[0]
				stored := call.Arguments.Get(0).(store.User)
				Expect(stored.Password.String).NotTo(Equal("s3cr3tpass"))
				Expect(bcrypt.CompareHashAndPassword([]byte(stored.Password.String), []byte("s3cr3tpass"))).To(Succeed())
			})

			It("should create a default profile and link the families", func() {
				mockStore.AssertCalled(GinkgoT(), "AddProfile", mock.Anything)
				mockStore.AssertCalled(GinkgoT(), "SetUserFamilies", int64(5), []int64{10})
				Expect(savedUser.Families).To(HaveLen(1))
			})

			It("should send the account created email", func() {
				mailer.AssertCalled(GinkgoT(), "SendAccountCreatedEmail", "giang@example.com", "giangnguyen")
			})
		})

		Context("when creating a user with a malformed email", func() {

			BeforeEach(func() {
				request = UserTransport{Email: "not-an-email", Password: "s3cr3tpass"}
			})

			assertErrorWithCause(ErrInvalidEmail)
		})

		Context("when creating a user with a short password", func() {

			BeforeEach(func() {
				request = UserTransport{Email: "giang@example.com", Password: "abc"}
			})

			assertErrorWithCause(ErrInvalidPasswordFormat)
		})

		Context("when the mailer fails", func() {

			BeforeEach(func() {
				request = UserTransport{
					Username: "giangnguyen",
					Email:    "giang@example.com",
					Password: "s3cr3tpass",
				}
				mockStore.On("AddUser", mock.Anything).Return(store.User{UserId: 5}, nil)
				mockStore.On("AddProfile", mock.Anything).Return(store.Profile{}, nil)
				mailer.On("SendAccountCreatedEmail", mock.Anything, mock.Anything).Return(errors.New("ses unavailable"))
			})

			assertNoError()

			It("should still return the created user", func() {
				Expect(savedUser.UserId).To(Equal(int64(5)))
			})
		})

		Context("when updating a user", func() {

			BeforeEach(func() {
				request = UserTransport{
					Id:        5,
					Username:  "giangnguyen",
					Email:     "giang@example.com",
					FamilyIds: []int64{10, 11},
				}
				mockStore.On("UpdateUser", mock.Anything).Return(store.User{
					UserId:   5,
					Username: store.DbNullString("giangnguyen"),
				}, nil)
				mockStore.On("SetUserFamilies", int64(5), []int64{10, 11}).Return(nil)
			})

			assertNoError()

			It("should rewrite the family memberships", func() {
				mockStore.AssertCalled(GinkgoT(), "SetUserFamilies", int64(5), []int64{10, 11})
			})

			It("should not send any email", func() {
				mailer.AssertNotCalled(GinkgoT(), "SendAccountCreatedEmail", mock.Anything, mock.Anything)
			})
		})

		Context("when updating an unknown user", func() {

			BeforeEach(func() {
				request = UserTransport{Id: 99}
				mockStore.On("UpdateUser", mock.Anything).Return(store.User{}, store.ErrUserNotFound)
			})

			assertErrorWithCause(store.ErrUserNotFound)
		})
	})

	Context("ListUsersWithoutFamily", func() {

		var (
			usersWithoutFamily []store.User
		)

		JustBeforeEach(func() {
			usersWithoutFamily, returnedError = userService.ListUsersWithoutFamily(ctx)
		})

		BeforeEach(func() {
			mockStore.On("ListUsersWithoutFamily").Return([]store.User{
				{UserId: 6},
				{UserId: 7},
			}, nil)
		})

		assertNoError()

		It("should return the unlinked users straight from the store query", func() {
			Expect(usersWithoutFamily).To(HaveLen(2))
			Expect(usersWithoutFamily[0].UserId).To(Equal(int64(6)))
			Expect(usersWithoutFamily[1].UserId).To(Equal(int64(7)))
		})

		It("should not load the full user list", func() {
			mockStore.AssertNotCalled(GinkgoT(), "SearchUsers", mock.Anything)
		})
	})

	Context("DeleteUser", func() {

		JustBeforeEach(func() {
			returnedError = userService.DeleteUser(ctx, 99)
		})

		Context("when the user does not exist", func() {

			BeforeEach(func() {
				mockStore.On("DeleteUser", int64(99)).Return(store.ErrUserNotFound)
			})

			assertErrorWithCause(store.ErrUserNotFound)
		})
	})
})
