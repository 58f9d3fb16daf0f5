package store

import (
	"database/sql"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrStoryNotFound = errors.New("story not found")
)

type Story struct {
	StoryId       int64 `gorm:"primary_key"`
	Code          string
	UserId        int64
	Title         sql.NullString
	Content       sql.NullString
	StoryAvatar   sql.NullString
	CoverImageUri sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Deleted       bool
}

func (s *Store) AddStory(tx *gorm.DB, story Story) (Story, error) {
	db := s.dbOrTx(tx)

	story.Code = s.StringGenerator.GenerateUuid()
	story.Deleted = false

	if err := db.Create(&story).Error; err != nil {
		return Story{}, err
	}
	return story, nil
}

func (s *Store) UpdateStory(tx *gorm.DB, story Story) (Story, error) {
	db := s.dbOrTx(tx)

	existing := Story{}
	res := db.Where("story_id = ? AND deleted = false", story.StoryId).First(&existing)
	if res.RecordNotFound() {
		return Story{}, ErrStoryNotFound
	}
	if res.Error != nil {
		return Story{}, res.Error
	}

	existing.Title = story.Title
	existing.Content = story.Content
	existing.StoryAvatar = story.StoryAvatar
	existing.CoverImageUri = story.CoverImageUri
	if err := db.Save(&existing).Error; err != nil {
		return Story{}, err
	}
	return existing, nil
}

func (s *Store) GetStory(tx *gorm.DB, storyId int64) (Story, error) {
	db := s.dbOrTx(tx)

	story := Story{}
	res := db.Where("story_id = ? AND deleted = false", storyId).First(&story)
	if res.RecordNotFound() {
		return Story{}, ErrStoryNotFound
	}
	if res.Error != nil {
		return Story{}, res.Error
	}
	return story, nil
}

func (s *Store) ListStories(tx *gorm.DB) ([]Story, error) {
	db := s.dbOrTx(tx)

	stories := []Story{}
	if err := db.Where("deleted = false").Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (s *Store) ListStoriesByUser(tx *gorm.DB, userId int64) ([]Story, error) {
	db := s.dbOrTx(tx)

	stories := []Story{}
	if err := db.Where("user_id = ? AND deleted = false", userId).Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (s *Store) DeleteStory(tx *gorm.DB, storyId int64) error {
	db := s.dbOrTx(tx)

	story := Story{}
	if db.Where("story_id = ? AND deleted = false", storyId).First(&story).RecordNotFound() {
		return ErrStoryNotFound
	}
	return db.Model(&Story{}).Where("story_id = ?", storyId).Update("deleted", true).Error
}
