package authentication

import (
	"context"
	"time"

	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredentials = errors.New("wrong email or password")
)

type Service interface {
	Authenticate(ctx context.Context, request AuthenticateTransport) (JwtToken, error)
}

type AuthenticationService struct {
	Store interface {
		GetUserByEmail(tx *gorm.DB, email string) (store.User, error)
	} `inject:""`
	Config *shared.AppConfig `inject:""`
}

type JwtToken struct {
	Token string `json:"token"`
}

type Claims struct {
	UserId int64    `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

func (s *AuthenticationService) Authenticate(ctx context.Context, request AuthenticateTransport) (JwtToken, error) {
	user, err := s.Store.GetUserByEmail(nil, request.Email)
	if err != nil {
		if errors.Cause(err) == store.ErrUserNotFound {
			return JwtToken{}, ErrBadCredentials
		}
		return JwtToken{}, errors.Wrap(err, "login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte(request.Password)); err != nil {
		return JwtToken{}, ErrBadCredentials
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserId: user.UserId,
		Email:  user.Email.String,
		Roles:  user.Roles.ToList(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.Config.JwtValidityHours) * time.Hour)),
		},
	})
	tokenString, err := token.SignedString([]byte(s.Config.JwtSecret))
	if err != nil {
		return JwtToken{}, err
	}
	return JwtToken{Token: tokenString}, nil
}
