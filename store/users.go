package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type User struct {
	UserId    int64 `gorm:"primary_key"`
	Code      string
	Username  sql.NullString
	Email     sql.NullString
	Password  sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool

	Roles    Roles    `sql:"-"`
	Families []Family `sql:"-"`
}

func (u User) Is(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

func (s *Store) AddUser(tx *gorm.DB, user User) (User, error) {
	db := s.dbOrTx(tx)

	user.Code = s.StringGenerator.GenerateUuid()
	user.Deleted = false

	if err := db.Create(&user).Error; err != nil {
		return User{}, err
	}

	for i, role := range user.Roles {
		role.UserId = user.UserId
		if _, err := s.AddRole(tx, role); err != nil {
			return User{}, err
		}
		user.Roles[i].UserId = user.UserId
	}

	return user, nil
}

func (s *Store) UpdateUser(tx *gorm.DB, user User) (User, error) {
	db := s.dbOrTx(tx)

	existing := User{}
	res := db.Where("user_id = ? AND deleted = false", user.UserId).First(&existing)
	if res.RecordNotFound() {
		return User{}, ErrUserNotFound
	}
	if res.Error != nil {
		return User{}, res.Error
	}

	existing.Username = user.Username
	existing.Email = user.Email
	if user.Password.Valid {
		existing.Password = user.Password
	}
	if err := db.Save(&existing).Error; err != nil {
		return User{}, err
	}

	if len(user.Roles) > 0 {
		if err := s.ReplaceUserRoles(tx, existing.UserId, user.Roles.ToList()); err != nil {
			return User{}, err
		}
		existing.Roles = user.Roles
	}

	return s.GetUser(tx, existing.UserId)
}

func (s *Store) GetUser(tx *gorm.DB, userId int64) (User, error) {
	db := s.dbOrTx(tx)

	user := User{}
	res := db.Where("user_id = ? AND deleted = false", userId).First(&user)
	if res.RecordNotFound() {
		return User{}, ErrUserNotFound
	}
	if res.Error != nil {
		return User{}, res.Error
	}
	if err := s.hydrateUser(db, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) GetUserByEmail(tx *gorm.DB, email string) (User, error) {
	db := s.dbOrTx(tx)

	user := User{}
	res := db.Where("email = ? AND deleted = false", email).First(&user)
	if res.RecordNotFound() {
		return User{}, ErrUserNotFound
	}
	if res.Error != nil {
		return User{}, res.Error
	}
	if err := s.hydrateUser(db, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) GetUsersByIds(tx *gorm.DB, userIds []int64) ([]User, error) {
	db := s.dbOrTx(tx)

	users := []User{}
	if len(userIds) == 0 {
		return users, nil
	}
	if err := db.Where("user_id IN (?) AND deleted = false", userIds).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.hydrateUser(db, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *Store) SearchUsers(tx *gorm.DB, username string) ([]User, error) {
	db := s.dbOrTx(tx)

	users := []User{}
	query := db.Where("deleted = false")
	if username != "" {
		query = query.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(username)+"%")
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.hydrateUser(db, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// ListUsersWithoutFamily returns the live users that no membership row points
// at, filtered in the database rather than by loading every user.
func (s *Store) ListUsersWithoutFamily(tx *gorm.DB) ([]User, error) {
	db := s.dbOrTx(tx)

	users := []User{}
	err := db.
		Joins("LEFT JOIN family_members ON family_members.user_id = users.user_id").
		Where("family_members.user_id IS NULL AND users.deleted = false").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.hydrateUser(db, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *Store) DeleteUser(tx *gorm.DB, userId int64) error {
	db := s.dbOrTx(tx)

	if !s.userExists(db, userId) {
		return ErrUserNotFound
	}
	return db.Model(&User{}).Where("user_id = ?", userId).Update("deleted", true).Error
}

func (s *Store) userExists(db *gorm.DB, userId int64) bool {
	u := User{}
	return !db.Where("user_id = ? AND deleted = false", userId).First(&u).RecordNotFound()
}

// ListUsersByFamily returns the live members of a family, resolved through the
// family_members join rows.
func (s *Store) ListUsersByFamily(tx *gorm.DB, familyId int64) ([]User, error) {
	db := s.dbOrTx(tx)

	users := []User{}
	err := db.
		Joins("JOIN family_members ON family_members.user_id = users.user_id").
		Where("family_members.family_id = ? AND users.deleted = false", familyId).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.hydrateUser(db, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// SetUserFamilies rewrites the membership join rows owned by a single user.
func (s *Store) SetUserFamilies(tx *gorm.DB, userId int64, familyIds []int64) error {
	db := s.dbOrTx(tx)

	if err := db.Where("user_id = ?", userId).Delete(&FamilyMember{}).Error; err != nil {
		return err
	}
	for _, familyId := range familyIds {
		if err := db.Create(&FamilyMember{FamilyId: familyId, UserId: userId}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) hydrateUser(db *gorm.DB, user *User) error {
	userRoles, err := s.GetUserRoles(db, user.UserId)
	if err != nil {
		return err
	}
	user.Roles = userRoles

	families := []Family{}
	err = db.
		Joins("JOIN family_members ON family_members.family_id = families.family_id").
		Where("family_members.user_id = ? AND families.deleted = false", user.UserId).
		Find(&families).Error
	if err != nil {
		return err
	}
	user.Families = families
	return nil
}
