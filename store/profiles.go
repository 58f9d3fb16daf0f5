package store

import (
	"database/sql"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

type Profile struct {
	ProfileId  int64 `gorm:"primary_key"`
	Code       string
	UserId     int64
	FirstName  sql.NullString
	LastName   sql.NullString
	Gender     sql.NullString
	BirthDate  time.Time
	DeathDate  *time.Time
	Biography  sql.NullString
	Address    sql.NullString
	AvatarUri  sql.NullString
	Configured bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
}

func (s *Store) AddProfile(tx *gorm.DB, profile Profile) (Profile, error) {
	db := s.dbOrTx(tx)

	profile.Code = s.StringGenerator.GenerateUuid()
	profile.Deleted = false

	if err := db.Create(&profile).Error; err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (s *Store) UpdateProfile(tx *gorm.DB, profile Profile) (Profile, error) {
	db := s.dbOrTx(tx)

	existing := Profile{}
	res := db.Where("profile_id = ? AND deleted = false", profile.ProfileId).First(&existing)
	if res.RecordNotFound() {
		return Profile{}, ErrProfileNotFound
	}
	if res.Error != nil {
		return Profile{}, res.Error
	}

	existing.FirstName = profile.FirstName
	existing.LastName = profile.LastName
	existing.Gender = profile.Gender
	existing.BirthDate = profile.BirthDate
	existing.DeathDate = profile.DeathDate
	existing.Biography = profile.Biography
	existing.Address = profile.Address
	existing.AvatarUri = profile.AvatarUri
	existing.Configured = profile.Configured
	if err := db.Save(&existing).Error; err != nil {
		return Profile{}, err
	}
	return existing, nil
}

func (s *Store) GetProfile(tx *gorm.DB, profileId int64) (Profile, error) {
	db := s.dbOrTx(tx)

	profile := Profile{}
	res := db.Where("profile_id = ? AND deleted = false", profileId).First(&profile)
	if res.RecordNotFound() {
		return Profile{}, ErrProfileNotFound
	}
	if res.Error != nil {
		return Profile{}, res.Error
	}
	return profile, nil
}

func (s *Store) GetProfileByUser(tx *gorm.DB, userId int64) (Profile, error) {
	db := s.dbOrTx(tx)

	profile := Profile{}
	res := db.Where("user_id = ? AND deleted = false", userId).First(&profile)
	if res.RecordNotFound() {
		return Profile{}, ErrProfileNotFound
	}
	if res.Error != nil {
		return Profile{}, res.Error
	}
	return profile, nil
}

func (s *Store) ListProfilesByFamily(tx *gorm.DB, familyId int64) ([]Profile, error) {
	db := s.dbOrTx(tx)

	profiles := []Profile{}
	err := db.
		Joins("JOIN family_members ON family_members.user_id = profiles.user_id").
		Where("family_members.family_id = ? AND profiles.deleted = false", familyId).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
