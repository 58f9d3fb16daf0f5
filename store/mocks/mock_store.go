package mocks

import (
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/mock"
)

// MockStore stands in for the real store in service tests. Tx returns nil so
// every call resolves to the plain connection path; Tx, Commit and Rollback
// only bump their counters, so tests can assert the transaction lifecycle
// without setting expectations for it. Id-keyed getters pass their arguments
// through so tests can answer differently per id.
type MockStore struct {
	mock.Mock

	TxCount       int
	CommitCount   int
	RollbackCount int
}

func (s *MockStore) Tx() *gorm.DB {
	s.TxCount++
	return nil
}

func (s *MockStore) Commit(tx *gorm.DB) {
	s.CommitCount++
}

func (s *MockStore) Rollback(tx *gorm.DB) {
	s.RollbackCount++
}

func (s *MockStore) AddUser(tx *gorm.DB, user store.User) (store.User, error) {
	args := s.Called(user)
	return args.Get(0).(store.User), args.Error(1)
}

func (s *MockStore) UpdateUser(tx *gorm.DB, user store.User) (store.User, error) {
	args := s.Called(user)
	return args.Get(0).(store.User), args.Error(1)
}

func (s *MockStore) GetUser(tx *gorm.DB, userId int64) (store.User, error) {
	args := s.Called(userId)
	return args.Get(0).(store.User), args.Error(1)
}

func (s *MockStore) GetUserByEmail(tx *gorm.DB, email string) (store.User, error) {
	args := s.Called(email)
	return args.Get(0).(store.User), args.Error(1)
}

func (s *MockStore) GetUsersByIds(tx *gorm.DB, userIds []int64) ([]store.User, error) {
	args := s.Called(userIds)
	return args.Get(0).([]store.User), args.Error(1)
}

func (s *MockStore) SearchUsers(tx *gorm.DB, username string) ([]store.User, error) {
	args := s.Called(username)
	return args.Get(0).([]store.User), args.Error(1)
}

func (s *MockStore) ListUsersWithoutFamily(tx *gorm.DB) ([]store.User, error) {
	args := s.Called()
	return args.Get(0).([]store.User), args.Error(1)
}

func (s *MockStore) DeleteUser(tx *gorm.DB, userId int64) error {
	args := s.Called(userId)
	return args.Error(0)
}

func (s *MockStore) SetUserFamilies(tx *gorm.DB, userId int64, familyIds []int64) error {
	args := s.Called(userId, familyIds)
	return args.Error(0)
}

func (s *MockStore) AddFamily(tx *gorm.DB, family store.Family) (store.Family, error) {
	args := s.Called(family)
	return args.Get(0).(store.Family), args.Error(1)
}

func (s *MockStore) UpdateFamily(tx *gorm.DB, family store.Family) (store.Family, error) {
	args := s.Called(family)
	return args.Get(0).(store.Family), args.Error(1)
}

func (s *MockStore) GetFamily(tx *gorm.DB, familyId int64) (store.Family, error) {
	args := s.Called(familyId)
	return args.Get(0).(store.Family), args.Error(1)
}

func (s *MockStore) ListFamilies(tx *gorm.DB) ([]store.Family, error) {
	args := s.Called()
	return args.Get(0).([]store.Family), args.Error(1)
}

func (s *MockStore) SearchFamiliesByName(tx *gorm.DB, name string) ([]store.Family, error) {
	args := s.Called(name)
	return args.Get(0).([]store.Family), args.Error(1)
}

func (s *MockStore) DeleteFamily(tx *gorm.DB, familyId int64) error {
	args := s.Called(familyId)
	return args.Error(0)
}

func (s *MockStore) SetFamilyMembers(tx *gorm.DB, familyId int64, userIds []int64) error {
	args := s.Called(familyId, userIds)
	return args.Error(0)
}

func (s *MockStore) ClearFamilyMembers(tx *gorm.DB, familyId int64) error {
	args := s.Called(familyId)
	return args.Error(0)
}

func (s *MockStore) ListFamiliesOfUser(tx *gorm.DB, userId int64) ([]store.Family, error) {
	args := s.Called(userId)
	return args.Get(0).([]store.Family), args.Error(1)
}

func (s *MockStore) AddProfile(tx *gorm.DB, profile store.Profile) (store.Profile, error) {
	args := s.Called(profile)
	return args.Get(0).(store.Profile), args.Error(1)
}

func (s *MockStore) UpdateProfile(tx *gorm.DB, profile store.Profile) (store.Profile, error) {
	args := s.Called(profile)
	return args.Get(0).(store.Profile), args.Error(1)
}

func (s *MockStore) GetProfile(tx *gorm.DB, profileId int64) (store.Profile, error) {
	args := s.Called(profileId)
	return args.Get(0).(store.Profile), args.Error(1)
}

func (s *MockStore) GetProfileByUser(tx *gorm.DB, userId int64) (store.Profile, error) {
	args := s.Called(userId)
	return args.Get(0).(store.Profile), args.Error(1)
}

func (s *MockStore) ListProfilesByFamily(tx *gorm.DB, familyId int64) ([]store.Profile, error) {
	args := s.Called(familyId)
	return args.Get(0).([]store.Profile), args.Error(1)
}

func (s *MockStore) AddFamilyTree(tx *gorm.DB, tree store.FamilyTree) (store.FamilyTree, error) {
	args := s.Called(tree)
	return args.Get(0).(store.FamilyTree), args.Error(1)
}

func (s *MockStore) UpdateFamilyTree(tx *gorm.DB, tree store.FamilyTree) (store.FamilyTree, error) {
	args := s.Called(tree)
	return args.Get(0).(store.FamilyTree), args.Error(1)
}

func (s *MockStore) GetFamilyTree(tx *gorm.DB, treeId int64) (store.FamilyTree, error) {
	args := s.Called(treeId)
	return args.Get(0).(store.FamilyTree), args.Error(1)
}

func (s *MockStore) ListFamilyTrees(tx *gorm.DB, name string, age int64) ([]store.FamilyTree, error) {
	args := s.Called(name, age)
	return args.Get(0).([]store.FamilyTree), args.Error(1)
}

func (s *MockStore) DeleteFamilyTree(tx *gorm.DB, treeId int64) error {
	args := s.Called(treeId)
	return args.Error(0)
}

func (s *MockStore) FindTreeLinks(tx *gorm.DB, treeId int64) ([]store.FamilyTreeFamily, error) {
	args := s.Called(treeId)
	return args.Get(0).([]store.FamilyTreeFamily), args.Error(1)
}

func (s *MockStore) AddTreeLinks(tx *gorm.DB, links []store.FamilyTreeFamily) error {
	args := s.Called(links)
	return args.Error(0)
}

func (s *MockStore) DeleteTreeLinks(tx *gorm.DB, links []store.FamilyTreeFamily) error {
	args := s.Called(links)
	return args.Error(0)
}

func (s *MockStore) AddStory(tx *gorm.DB, story store.Story) (store.Story, error) {
	args := s.Called(story)
	return args.Get(0).(store.Story), args.Error(1)
}

func (s *MockStore) UpdateStory(tx *gorm.DB, story store.Story) (store.Story, error) {
	args := s.Called(story)
	return args.Get(0).(store.Story), args.Error(1)
}

func (s *MockStore) GetStory(tx *gorm.DB, storyId int64) (store.Story, error) {
	args := s.Called(storyId)
	return args.Get(0).(store.Story), args.Error(1)
}

func (s *MockStore) ListStories(tx *gorm.DB) ([]store.Story, error) {
	args := s.Called()
	return args.Get(0).([]store.Story), args.Error(1)
}

func (s *MockStore) ListStoriesByUser(tx *gorm.DB, userId int64) ([]store.Story, error) {
	args := s.Called(userId)
	return args.Get(0).([]store.Story), args.Error(1)
}

func (s *MockStore) DeleteStory(tx *gorm.DB, storyId int64) error {
	args := s.Called(storyId)
	return args.Error(0)
}
