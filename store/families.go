package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrFamilyNotFound = errors.New("family not found")
)

const (
	STATUS_PENDING  = "PENDING"
	STATUS_ACCEPTED = "ACCEPTED"
	STATUS_REJECTED = "REJECTED"
)

type Family struct {
	FamilyId  int64 `gorm:"primary_key"`
	Code      string
	Name      sql.NullString
	AvatarUri sql.NullString
	HusbandId sql.NullInt64
	WifeId    sql.NullInt64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool

	ChildIds []int64 `sql:"-"`
	Members  []User  `sql:"-"`
	Husband  *User   `sql:"-"`
	Wife     *User   `sql:"-"`
}

func (f Family) IsChild(userId int64) bool {
	for _, childId := range f.ChildIds {
		if childId == userId {
			return true
		}
	}
	return false
}

type FamilyChild struct {
	FamilyId int64
	ChildId  int64
	Position int
}

func (FamilyChild) TableName() string {
	return "family_children"
}

type FamilyMember struct {
	FamilyId int64
	UserId   int64
}

func (FamilyMember) TableName() string {
	return "family_members"
}

func (s *Store) AddFamily(tx *gorm.DB, family Family) (Family, error) {
	db := s.dbOrTx(tx)

	family.Code = s.StringGenerator.GenerateUuid()
	family.Deleted = false

	if err := db.Create(&family).Error; err != nil {
		return Family{}, err
	}
	if err := s.replaceFamilyChildren(db, family.FamilyId, family.ChildIds); err != nil {
		return Family{}, err
	}

	return family, nil
}

func (s *Store) UpdateFamily(tx *gorm.DB, family Family) (Family, error) {
	db := s.dbOrTx(tx)

	existing := Family{}
	res := db.Where("family_id = ? AND deleted = false", family.FamilyId).First(&existing)
	if res.RecordNotFound() {
		return Family{}, ErrFamilyNotFound
	}
	if res.Error != nil {
		return Family{}, res.Error
	}

	existing.Name = family.Name
	existing.AvatarUri = family.AvatarUri
	existing.HusbandId = family.HusbandId
	existing.WifeId = family.WifeId
	existing.Status = family.Status
	if err := db.Save(&existing).Error; err != nil {
		return Family{}, err
	}
	if err := s.replaceFamilyChildren(db, existing.FamilyId, family.ChildIds); err != nil {
		return Family{}, err
	}
	existing.ChildIds = family.ChildIds

	return existing, nil
}

func (s *Store) GetFamily(tx *gorm.DB, familyId int64) (Family, error) {
	db := s.dbOrTx(tx)

	family := Family{}
	res := db.Where("family_id = ? AND deleted = false", familyId).First(&family)
	if res.RecordNotFound() {
		return Family{}, ErrFamilyNotFound
	}
	if res.Error != nil {
		return Family{}, res.Error
	}
	if err := s.hydrateFamily(db, &family); err != nil {
		return Family{}, err
	}
	return family, nil
}

func (s *Store) ListFamilies(tx *gorm.DB) ([]Family, error) {
	db := s.dbOrTx(tx)

	families := []Family{}
	if err := db.Where("deleted = false").Find(&families).Error; err != nil {
		return nil, err
	}
	for i := range families {
		if err := s.hydrateFamily(db, &families[i]); err != nil {
			return nil, err
		}
	}
	return families, nil
}

func (s *Store) SearchFamiliesByName(tx *gorm.DB, name string) ([]Family, error) {
	db := s.dbOrTx(tx)

	families := []Family{}
	query := db.Where("deleted = false")
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if err := query.Find(&families).Error; err != nil {
		return nil, err
	}
	for i := range families {
		if err := s.hydrateFamily(db, &families[i]); err != nil {
			return nil, err
		}
	}
	return families, nil
}

// DeleteFamily only raises the soft-delete flag; children and membership rows
// stay in place.
func (s *Store) DeleteFamily(tx *gorm.DB, familyId int64) error {
	db := s.dbOrTx(tx)

	if !s.familyExists(db, familyId) {
		return ErrFamilyNotFound
	}
	return db.Model(&Family{}).Where("family_id = ?", familyId).Update("deleted", true).Error
}

func (s *Store) familyExists(db *gorm.DB, familyId int64) bool {
	f := Family{}
	return !db.Where("family_id = ? AND deleted = false", familyId).First(&f).RecordNotFound()
}

// SetFamilyMembers rewrites the membership join rows owned by a single family.
func (s *Store) SetFamilyMembers(tx *gorm.DB, familyId int64, userIds []int64) error {
	db := s.dbOrTx(tx)

	if err := db.Where("family_id = ?", familyId).Delete(&FamilyMember{}).Error; err != nil {
		return err
	}
	for _, userId := range userIds {
		if err := db.Create(&FamilyMember{FamilyId: familyId, UserId: userId}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ClearFamilyMembers(tx *gorm.DB, familyId int64) error {
	db := s.dbOrTx(tx)

	return db.Where("family_id = ?", familyId).Delete(&FamilyMember{}).Error
}

func (s *Store) ListFamiliesOfUser(tx *gorm.DB, userId int64) ([]Family, error) {
	db := s.dbOrTx(tx)

	families := []Family{}
	err := db.
		Joins("JOIN family_members ON family_members.family_id = families.family_id").
		Where("family_members.user_id = ? AND families.deleted = false", userId).
		Find(&families).Error
	if err != nil {
		return nil, err
	}
	for i := range families {
		if err := s.hydrateFamily(db, &families[i]); err != nil {
			return nil, err
		}
	}
	return families, nil
}

func (s *Store) replaceFamilyChildren(db *gorm.DB, familyId int64, childIds []int64) error {
	if err := db.Where("family_id = ?", familyId).Delete(&FamilyChild{}).Error; err != nil {
		return err
	}
	for i, childId := range childIds {
		if err := db.Create(&FamilyChild{FamilyId: familyId, ChildId: childId, Position: i}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) hydrateFamily(db *gorm.DB, family *Family) error {
	children := []FamilyChild{}
	if err := db.Where("family_id = ?", family.FamilyId).Order("position").Find(&children).Error; err != nil {
		return err
	}
	family.ChildIds = make([]int64, 0, len(children))
	for _, child := range children {
		family.ChildIds = append(family.ChildIds, child.ChildId)
	}

	members, err := s.ListUsersByFamily(db, family.FamilyId)
	if err != nil {
		return err
	}
	family.Members = members

	// partner ids that no longer resolve are left nil, never an error
	if family.HusbandId.Valid {
		if husband, err := s.GetUser(db, family.HusbandId.Int64); err == nil {
			family.Husband = &husband
		} else if errors.Cause(err) != ErrUserNotFound {
			return err
		}
	}
	if family.WifeId.Valid {
		if wife, err := s.GetUser(db, family.WifeId.Int64); err == nil {
			family.Wife = &wife
		} else if errors.Cause(err) != ErrUserNotFound {
			return err
		}
	}
	return nil
}
