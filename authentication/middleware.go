package authentication

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hieungocdinh/mad-project-n16/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type Firewall struct {
	Config *shared.AppConfig `inject:""`
}

// Roles guards a handler behind a bearer token and a role constraint. The
// decoded claims land in the request context under "claims" so downstream
// code can identify the requester.
func (f *Firewall) Roles(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authorizationHeader := req.Header.Get("authorization")
		if authorizationHeader == "" {
			shared.HttpError(w, shared.NewError("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		bearerToken := strings.Split(authorizationHeader, " ")
		if len(bearerToken) != 2 {
			shared.HttpError(w, shared.NewError("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		claims := Claims{}
		token, err := jwt.ParseWithClaims(bearerToken[1], &claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("error token method")
			}
			return []byte(f.Config.JwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			shared.HttpError(w, shared.NewError("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		if !intersects(claims.Roles, roles) {
			shared.HttpError(w, shared.NewError(fmt.Sprintf("you must be %v to use this service", roles)), http.StatusForbidden)
			return
		}

		ctx := context.WithValue(req.Context(), "claims", map[string]interface{}{
			"userId": claims.UserId,
			"roles":  claims.Roles,
		})
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func intersects(list1, list2 []string) bool {
	for _, v1 := range list1 {
		for _, v2 := range list2 {
			if v1 == v2 {
				return true
			}
		}
	}
	return false
}
