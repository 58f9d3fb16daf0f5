package authentication_test

import (
	"context"

	. "github.com/hieungocdinh/mad-project-n16/authentication"
	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"
	"github.com/hieungocdinh/mad-project-n16/store/mocks"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Service", func() {

	var (
		ctx         = context.Background()
		authService Service

		mockStore *mocks.MockStore
		config    *shared.AppConfig

		token         JwtToken
		returnedError error
	)

	BeforeEach(func() {
		mockStore = &mocks.MockStore{}
		config = &shared.AppConfig{
			JwtSecret:        "test-secret",
			JwtValidityHours: 6,
		}
		authService = &AuthenticationService{
			Store:  mockStore,
			Config: config,
		}
	})

	JustBeforeEach(func() {
		token, returnedError = authService.Authenticate(ctx, AuthenticateTransport{
			Email:    "giang@example.com",
			Password: "s3cr3tpass",
		})
	})

	Context("with valid credentials", func() {

		BeforeEach(func() {
			hashed, err := bcrypt.GenerateFromPassword([]byte("s3cr3tpass"), bcrypt.MinCost)
			Expect(err).To(BeNil())
			mockStore.On("GetUserByEmail", "giang@example.com").Return(store.User{
				UserId:   5,
				Email:    store.DbNullString("giang@example.com"),
				Password: store.DbNullString(string(hashed)),
				Roles:    store.Roles{{UserId: 5, Role: store.ROLE_USER}},
			}, nil)
		})

		It("should not return an error", func() {
			Expect(returnedError).To(BeNil())
		})

		It("should issue a signed token carrying the user identity", func() {
			claims := Claims{}
			parsed, err := jwt.ParseWithClaims(token.Token, &claims, func(t *jwt.Token) (interface{}, error) {
				return []byte("test-secret"), nil
			})
			Expect(err).To(BeNil())
			Expect(parsed.Valid).To(BeTrue())
			Expect(claims.UserId).To(Equal(int64(5)))
			Expect(claims.Email).To(Equal("giang@example.com"))
			Expect(claims.Roles).To(Equal([]string{store.ROLE_USER}))
		})
	})

	Context("with a wrong password", func() {

		BeforeEach(func() {
			hashed, _ := bcrypt.GenerateFromPassword([]byte("anotherpass"), bcrypt.MinCost)
			mockStore.On("GetUserByEmail", "giang@example.com").Return(store.User{
				UserId:   5,
				Password: store.DbNullString(string(hashed)),
			}, nil)
		})

		It("should reject the login", func() {
			Expect(errors.Cause(returnedError)).To(Equal(ErrBadCredentials))
			Expect(token.Token).To(BeEmpty())
		})
	})

	Context("with an unknown email", func() {

		BeforeEach(func() {
			mockStore.On("GetUserByEmail", "giang@example.com").Return(store.User{}, store.ErrUserNotFound)
		})

		It("should reject the login without leaking the reason", func() {
			Expect(errors.Cause(returnedError)).To(Equal(ErrBadCredentials))
		})
	})
})
