package store

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

const (
	ROLE_ADMIN        = "ADMIN"
	ROLE_USER         = "USER"
	ROLE_FAMILY_OWNER = "FAMILY_OWNER"
)

var (
	roles = []string{ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER}
)

type Role struct {
	UserId int64
	Role   string
}

type Roles []Role

func (r *Roles) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		for _, role := range strings.Split(v, ",") {
			*r = append(*r, Role{Role: role})
		}
	default:
		return errors.New("need string with roles separated by comma")
	}
	return nil
}

func (r Roles) ToList() []string {
	list := make([]string, 0)
	for _, role := range r {
		list = append(list, role.Role)
	}
	return list
}

func (s *Store) AddRole(tx *gorm.DB, role Role) (Role, error) {
	db := s.dbOrTx(tx)

	if !s.isRoleValid(role.Role) {
		return Role{}, fmt.Errorf("role is not valid, must be %s", roles)
	}

	if err := db.Create(&role).Error; err != nil {
		return Role{}, err
	}
	return role, nil
}

func (s *Store) GetUserRoles(tx *gorm.DB, userId int64) ([]Role, error) {
	db := s.dbOrTx(tx)

	userRoles := []Role{}
	if err := db.Where("user_id = ?", userId).Find(&userRoles).Error; err != nil {
		return nil, err
	}
	return userRoles, nil
}

func (s *Store) ReplaceUserRoles(tx *gorm.DB, userId int64, newRoles []string) error {
	db := s.dbOrTx(tx)

	for _, role := range newRoles {
		if !s.isRoleValid(role) {
			return fmt.Errorf("role is not valid, must be %s", roles)
		}
	}

	if err := db.Where("user_id = ?", userId).Delete(&Role{}).Error; err != nil {
		return err
	}
	for _, role := range newRoles {
		if err := db.Create(&Role{UserId: userId, Role: role}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) isRoleValid(role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
