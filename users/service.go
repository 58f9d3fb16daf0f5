package users

import (
	"context"
	"strings"

	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail          = errors.New("invalid email")
	ErrInvalidPasswordFormat = errors.New("password must be at least 6 characters long")
)

type Service interface {
	SaveUser(ctx context.Context, request UserTransport) (store.User, error)
	GetUser(ctx context.Context, userId int64) (store.User, error)
	ListUsers(ctx context.Context, username string) ([]store.User, error)
	ListUsersWithoutFamily(ctx context.Context) ([]store.User, error)
	DeleteUser(ctx context.Context, userId int64) error
}

type UserService struct {
	Store interface {
		Tx() *gorm.DB
		Commit(tx *gorm.DB)
		Rollback(tx *gorm.DB)
		AddUser(tx *gorm.DB, user store.User) (store.User, error)
		UpdateUser(tx *gorm.DB, user store.User) (store.User, error)
		GetUser(tx *gorm.DB, userId int64) (store.User, error)
		SearchUsers(tx *gorm.DB, username string) ([]store.User, error)
		ListUsersWithoutFamily(tx *gorm.DB) ([]store.User, error)
		DeleteUser(tx *gorm.DB, userId int64) error
		SetUserFamilies(tx *gorm.DB, userId int64, familyIds []int64) error
		AddProfile(tx *gorm.DB, profile store.Profile) (store.Profile, error)
	} `inject:""`
	Mailer interface {
		SendAccountCreatedEmail(ctx context.Context, email, username string) error
	} `inject:"mailer"`
	Logger *shared.Logger `inject:""`
}

// SaveUser creates the user when the request carries no id, otherwise it
// updates the existing one. In both cases the family membership rows are
// rewritten to the requested set.
func (u *UserService) SaveUser(ctx context.Context, request UserTransport) (store.User, error) {
	if request.Id == 0 {
		return u.addUser(ctx, request)
	}
	return u.updateUser(ctx, request)
}

func (u *UserService) addUser(ctx context.Context, request UserTransport) (store.User, error) {
	if !strings.Contains(request.Email, "@") {
		return store.User{}, ErrInvalidEmail
	}
	if len(request.Password) < 6 {
		return store.User{}, ErrInvalidPasswordFormat
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, errors.Wrap(err, "failed to hash password")
	}

	roles := store.Roles{}
	for _, role := range request.Roles {
		roles = append(roles, store.Role{Role: role})
	}
	if len(roles) == 0 {
		roles = store.Roles{{Role: store.ROLE_USER}}
	}

	tx := u.Store.Tx()

	user, err := u.Store.AddUser(tx, store.User{
		Username: store.DbNullString(request.Username),
		Email:    store.DbNullString(request.Email),
		Password: store.DbNullString(string(hashed)),
		Roles:    roles,
	})
	if err != nil {
		u.Store.Rollback(tx)
		return store.User{}, errors.Wrap(err, "failed to create user")
	}

	if _, err := u.Store.AddProfile(tx, store.Profile{UserId: user.UserId}); err != nil {
		u.Store.Rollback(tx)
		return store.User{}, errors.Wrap(err, "failed to create profile")
	}

	if err := u.setFamilies(tx, &user, request.FamilyIds); err != nil {
		u.Store.Rollback(tx)
		return store.User{}, err
	}

	u.Store.Commit(tx)

	if err := u.Mailer.SendAccountCreatedEmail(ctx, request.Email, request.Username); err != nil {
		u.Logger.Warn(ctx, "failed to send account created email", "email", request.Email, "err", err.Error())
	}
	return user, nil
}

func (u *UserService) updateUser(ctx context.Context, request UserTransport) (store.User, error) {
	password := store.DbNullString("")
	if request.Password != "" {
		if len(request.Password) < 6 {
			return store.User{}, ErrInvalidPasswordFormat
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return store.User{}, errors.Wrap(err, "failed to hash password")
		}
		password = store.DbNullString(string(hashed))
	}

	roles := store.Roles{}
	for _, role := range request.Roles {
		roles = append(roles, store.Role{Role: role})
	}

	tx := u.Store.Tx()

	user, err := u.Store.UpdateUser(tx, store.User{
		UserId:   request.Id,
		Username: store.DbNullString(request.Username),
		Email:    store.DbNullString(request.Email),
		Password: password,
		Roles:    roles,
	})
	if err != nil {
		u.Store.Rollback(tx)
		return store.User{}, errors.Wrap(err, "failed to update user")
	}

	if err := u.setFamilies(tx, &user, request.FamilyIds); err != nil {
		u.Store.Rollback(tx)
		return store.User{}, err
	}

	u.Store.Commit(tx)
	return user, nil
}

func (u *UserService) setFamilies(tx *gorm.DB, user *store.User, familyIds []int64) error {
	if familyIds == nil {
		return nil
	}
	if err := u.Store.SetUserFamilies(tx, user.UserId, familyIds); err != nil {
		return errors.Wrap(err, "failed to set user families")
	}
	user.Families = nil
	for _, familyId := range familyIds {
		user.Families = append(user.Families, store.Family{FamilyId: familyId})
	}
	return nil
}

func (u *UserService) GetUser(ctx context.Context, userId int64) (store.User, error) {
	user, err := u.Store.GetUser(nil, userId)
	if err != nil {
		return store.User{}, errors.Wrap(err, "failed to get user")
	}
	return user, nil
}

func (u *UserService) ListUsers(ctx context.Context, username string) ([]store.User, error) {
	users, err := u.Store.SearchUsers(nil, username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

func (u *UserService) ListUsersWithoutFamily(ctx context.Context) ([]store.User, error) {
	users, err := u.Store.ListUsersWithoutFamily(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

func (u *UserService) DeleteUser(ctx context.Context, userId int64) error {
	if err := u.Store.DeleteUser(nil, userId); err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	return nil
}
