package authentication_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/hieungocdinh/mad-project-n16/authentication"
	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Firewall", func() {

	var (
		firewall *Firewall
		handler  http.Handler

		recorder *httptest.ResponseRecorder
		request  *http.Request

		seenClaims map[string]interface{}
	)

	signToken := func(userId int64, roles []string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserId: userId,
			Roles:  roles,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte("test-secret"))
		Expect(err).To(BeNil())
		return signed
	}

	BeforeEach(func() {
		firewall = &Firewall{Config: &shared.AppConfig{JwtSecret: "test-secret"}}
		seenClaims = nil
		handler = firewall.Roles(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenClaims, _ = r.Context().Value("claims").(map[string]interface{})
			w.WriteHeader(http.StatusOK)
		}), store.ROLE_ADMIN)

		recorder = httptest.NewRecorder()
		request = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	})

	Context("with a valid token and a matching role", func() {

		BeforeEach(func() {
			request.Header.Set("authorization", "Bearer "+signToken(5, []string{store.ROLE_ADMIN}))
			handler.ServeHTTP(recorder, request)
		})

		It("should let the request through", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
		})

		It("should expose the requester in the context claims", func() {
			Expect(seenClaims).NotTo(BeNil())
			Expect(seenClaims["userId"]).To(Equal(int64(5)))
			Expect(seenClaims["roles"]).To(Equal([]string{store.ROLE_ADMIN}))
		})
	})

	Context("without an authorization header", func() {

		BeforeEach(func() {
			handler.ServeHTTP(recorder, request)
		})

		It("should reject the request", func() {
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("with a token signed with another secret", func() {

		BeforeEach(func() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserId: 5, Roles: []string{store.ROLE_ADMIN}})
			signed, _ := token.SignedString([]byte("other-secret"))
			request.Header.Set("authorization", "Bearer "+signed)
			handler.ServeHTTP(recorder, request)
		})

		It("should reject the request", func() {
			Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("with a valid token but a missing role", func() {

		BeforeEach(func() {
			request.Header.Set("authorization", "Bearer "+signToken(5, []string{store.ROLE_USER}))
			handler.ServeHTTP(recorder, request)
		})

		It("should refuse access", func() {
			Expect(recorder.Code).To(Equal(http.StatusForbidden))
		})
	})
})
