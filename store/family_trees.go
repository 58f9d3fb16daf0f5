package store

import (
	"database/sql"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrFamilyTreeNotFound = errors.New("family tree not found")
)

type FamilyTree struct {
	FamilyTreeId int64 `gorm:"primary_key"`
	Code         string
	Name         sql.NullString
	Age          sql.NullInt64
	Generations  sql.NullInt64
	AvatarUri    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Deleted      bool

	Links []FamilyTreeFamily `sql:"-"`
}

// FamilyTreeFamily is the (tree, family, generation) membership fact. Rows are
// only ever created or removed by the reconciler, never updated in place.
type FamilyTreeFamily struct {
	LinkId       int64 `gorm:"primary_key"`
	FamilyTreeId int64
	FamilyId     int64
	Generation   int
	CreatedAt    time.Time
}

func (FamilyTreeFamily) TableName() string {
	return "family_tree_families"
}

func (s *Store) AddFamilyTree(tx *gorm.DB, tree FamilyTree) (FamilyTree, error) {
	db := s.dbOrTx(tx)

	tree.Code = s.StringGenerator.GenerateUuid()
	tree.Deleted = false

	if err := db.Create(&tree).Error; err != nil {
		return FamilyTree{}, err
	}
	return tree, nil
}

func (s *Store) UpdateFamilyTree(tx *gorm.DB, tree FamilyTree) (FamilyTree, error) {
	db := s.dbOrTx(tx)

	existing := FamilyTree{}
	res := db.Where("family_tree_id = ? AND deleted = false", tree.FamilyTreeId).First(&existing)
	if res.RecordNotFound() {
		return FamilyTree{}, ErrFamilyTreeNotFound
	}
	if res.Error != nil {
		return FamilyTree{}, res.Error
	}

	existing.Name = tree.Name
	existing.Age = tree.Age
	existing.Generations = tree.Generations
	existing.AvatarUri = tree.AvatarUri
	if err := db.Save(&existing).Error; err != nil {
		return FamilyTree{}, err
	}
	return existing, nil
}

func (s *Store) GetFamilyTree(tx *gorm.DB, treeId int64) (FamilyTree, error) {
	db := s.dbOrTx(tx)

	tree := FamilyTree{}
	res := db.Where("family_tree_id = ? AND deleted = false", treeId).First(&tree)
	if res.RecordNotFound() {
		return FamilyTree{}, ErrFamilyTreeNotFound
	}
	if res.Error != nil {
		return FamilyTree{}, res.Error
	}

	links, err := s.FindTreeLinks(tx, tree.FamilyTreeId)
	if err != nil {
		return FamilyTree{}, err
	}
	tree.Links = links
	return tree, nil
}

func (s *Store) ListFamilyTrees(tx *gorm.DB, name string, age int64) ([]FamilyTree, error) {
	db := s.dbOrTx(tx)

	trees := []FamilyTree{}
	query := db.Where("deleted = false")
	if name != "" {
		query = query.Where("name = ?", name)
	}
	if age != 0 {
		query = query.Where("age = ?", age)
	}
	if err := query.Find(&trees).Error; err != nil {
		return nil, err
	}
	for i := range trees {
		links, err := s.FindTreeLinks(tx, trees[i].FamilyTreeId)
		if err != nil {
			return nil, err
		}
		trees[i].Links = links
	}
	return trees, nil
}

func (s *Store) DeleteFamilyTree(tx *gorm.DB, treeId int64) error {
	db := s.dbOrTx(tx)

	tree := FamilyTree{}
	if db.Where("family_tree_id = ? AND deleted = false", treeId).First(&tree).RecordNotFound() {
		return ErrFamilyTreeNotFound
	}
	return db.Model(&FamilyTree{}).Where("family_tree_id = ?", treeId).Update("deleted", true).Error
}

func (s *Store) FindTreeLinks(tx *gorm.DB, treeId int64) ([]FamilyTreeFamily, error) {
	db := s.dbOrTx(tx)

	links := []FamilyTreeFamily{}
	if err := db.Where("family_tree_id = ?", treeId).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (s *Store) AddTreeLinks(tx *gorm.DB, links []FamilyTreeFamily) error {
	db := s.dbOrTx(tx)

	for i := range links {
		if err := db.Create(&links[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteTreeLinks(tx *gorm.DB, links []FamilyTreeFamily) error {
	db := s.dbOrTx(tx)

	for _, link := range links {
		if err := db.Where("link_id = ?", link.LinkId).Delete(&FamilyTreeFamily{}).Error; err != nil {
			return err
		}
	}
	return nil
}
