package stories

import (
	"context"
	"strings"

	"github.com/hieungocdinh/mad-project-n16/storage"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrNotAuthor   = errors.New("only the author can modify a story")
	ErrEmptyTitle  = errors.New("story title cannot be empty")
	ErrNoRequester = errors.New("no authenticated user in request context")
)

type Service interface {
	AddStory(ctx context.Context, request StoryTransport) (store.Story, error)
	UpdateStory(ctx context.Context, request StoryTransport) (store.Story, error)
	GetStory(ctx context.Context, storyId int64) (store.Story, error)
	ListStories(ctx context.Context, userId int64) ([]store.Story, error)
	DeleteStory(ctx context.Context, storyId int64) error
}

type StoryService struct {
	Store interface {
		AddStory(tx *gorm.DB, story store.Story) (store.Story, error)
		UpdateStory(tx *gorm.DB, story store.Story) (store.Story, error)
		GetStory(tx *gorm.DB, storyId int64) (store.Story, error)
		ListStories(tx *gorm.DB) ([]store.Story, error)
		ListStoriesByUser(tx *gorm.DB, userId int64) ([]store.Story, error)
		DeleteStory(tx *gorm.DB, storyId int64) error
		GetUser(tx *gorm.DB, userId int64) (store.User, error)
	} `inject:""`
	Storage storage.Storage `inject:""`
}

func (s *StoryService) AddStory(ctx context.Context, request StoryTransport) (store.Story, error) {
	if request.Title == "" {
		return store.Story{}, ErrEmptyTitle
	}
	authorId, err := requesterId(ctx)
	if err != nil {
		return store.Story{}, err
	}
	if err := s.setAndStoreDecodedImages(ctx, &request); err != nil {
		return store.Story{}, err
	}

	story, err := s.Store.AddStory(nil, store.Story{
		UserId:        authorId,
		Title:         store.DbNullString(request.Title),
		Content:       store.DbNullString(request.Content),
		StoryAvatar:   store.DbNullString(request.StoryAvatar),
		CoverImageUri: store.DbNullString(request.CoverImageUri),
	})
	if err != nil {
		return store.Story{}, errors.Wrap(err, "failed to create story")
	}
	return story, nil
}

func (s *StoryService) UpdateStory(ctx context.Context, request StoryTransport) (store.Story, error) {
	existing, err := s.Store.GetStory(nil, request.Id)
	if err != nil {
		return store.Story{}, errors.Wrap(err, "failed to update story")
	}
	if err := s.checkAuthorship(ctx, existing); err != nil {
		return store.Story{}, err
	}
	if err := s.setAndStoreDecodedImages(ctx, &request); err != nil {
		return store.Story{}, err
	}

	existing.Title = store.DbNullString(request.Title)
	existing.Content = store.DbNullString(request.Content)
	if request.StoryAvatar != "" {
		existing.StoryAvatar = store.DbNullString(request.StoryAvatar)
	}
	if request.CoverImageUri != "" {
		existing.CoverImageUri = store.DbNullString(request.CoverImageUri)
	}

	story, err := s.Store.UpdateStory(nil, existing)
	if err != nil {
		return store.Story{}, errors.Wrap(err, "failed to update story")
	}
	return story, nil
}

func (s *StoryService) GetStory(ctx context.Context, storyId int64) (store.Story, error) {
	story, err := s.Store.GetStory(nil, storyId)
	if err != nil {
		return store.Story{}, errors.Wrap(err, "failed to get story")
	}
	return story, nil
}

// ListStories returns every story when userId is zero, otherwise only the
// stories written by that user.
func (s *StoryService) ListStories(ctx context.Context, userId int64) ([]store.Story, error) {
	var stories []store.Story
	var err error
	if userId == 0 {
		stories, err = s.Store.ListStories(nil)
	} else {
		stories, err = s.Store.ListStoriesByUser(nil, userId)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stories")
	}
	return stories, nil
}

func (s *StoryService) DeleteStory(ctx context.Context, storyId int64) error {
	story, err := s.Store.GetStory(nil, storyId)
	if err != nil {
		return errors.Wrap(err, "failed to delete story")
	}
	if err := s.checkAuthorship(ctx, story); err != nil {
		return err
	}
	if err := s.Store.DeleteStory(nil, storyId); err != nil {
		return errors.Wrap(err, "failed to delete story")
	}
	return nil
}

// checkAuthorship lets the author and admins through, everyone else is
// rejected.
func (s *StoryService) checkAuthorship(ctx context.Context, story store.Story) error {
	requester, err := requesterId(ctx)
	if err != nil {
		return err
	}
	if requester == story.UserId {
		return nil
	}
	user, err := s.Store.GetUser(nil, requester)
	if err == nil && user.Is(store.ROLE_ADMIN) {
		return nil
	}
	return ErrNotAuthor
}

func requesterId(ctx context.Context) (int64, error) {
	claims, ok := ctx.Value("claims").(map[string]interface{})
	if !ok {
		return 0, ErrNoRequester
	}
	userId, ok := claims["userId"].(int64)
	if !ok || userId == 0 {
		return 0, ErrNoRequester
	}
	return userId, nil
}

func (s *StoryService) setAndStoreDecodedImages(ctx context.Context, request *StoryTransport) error {
	for _, field := range []*string{&request.StoryAvatar, &request.CoverImageUri} {
		if strings.HasPrefix(*field, "data:image/jpeg;base64,") {
			encoded := strings.TrimPrefix(*field, "data:image/jpeg;base64,")

			uri, err := s.Storage.Store(ctx, encoded, "image/jpeg")
			if err != nil {
				return errors.Wrap(err, "failed to store image")
			}
			*field = uri
		}
	}
	return nil
}
