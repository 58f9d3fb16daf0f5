package familytrees

import (
	"context"

	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

type Service interface {
	SaveFamilyTree(ctx context.Context, request FamilyTreeTransport) (store.FamilyTree, error)
	SaveAllFamilyTrees(ctx context.Context, requests []FamilyTreeTransport) ([]store.FamilyTree, error)
	GetFamilyTree(ctx context.Context, request FamilyTreeTransport) (store.FamilyTree, error)
	ListFamilyTrees(ctx context.Context, name string, age int64) ([]store.FamilyTree, error)
	DeleteFamilyTree(ctx context.Context, request FamilyTreeTransport) error
}

type FamilyTreeService struct {
	Store interface {
		Tx() *gorm.DB
		Commit(tx *gorm.DB)
		Rollback(tx *gorm.DB)
		AddFamilyTree(tx *gorm.DB, tree store.FamilyTree) (store.FamilyTree, error)
		UpdateFamilyTree(tx *gorm.DB, tree store.FamilyTree) (store.FamilyTree, error)
		GetFamilyTree(tx *gorm.DB, treeId int64) (store.FamilyTree, error)
		ListFamilyTrees(tx *gorm.DB, name string, age int64) ([]store.FamilyTree, error)
		DeleteFamilyTree(tx *gorm.DB, treeId int64) error
		FindTreeLinks(tx *gorm.DB, treeId int64) ([]store.FamilyTreeFamily, error)
		AddTreeLinks(tx *gorm.DB, links []store.FamilyTreeFamily) error
		DeleteTreeLinks(tx *gorm.DB, links []store.FamilyTreeFamily) error
	} `inject:""`
}

// SaveFamilyTree upserts the tree itself, then reconciles its family links
// against the requested set.
func (f *FamilyTreeService) SaveFamilyTree(ctx context.Context, request FamilyTreeTransport) (store.FamilyTree, error) {
	tx := f.Store.Tx()

	tree, err := f.upsertTree(tx, request)
	if err != nil {
		f.Store.Rollback(tx)
		return store.FamilyTree{}, errors.Wrap(err, "failed to save family tree")
	}

	if err := f.reconcileLinks(tx, tree.FamilyTreeId, request.Families); err != nil {
		f.Store.Rollback(tx)
		return store.FamilyTree{}, errors.Wrap(err, "failed to reconcile family tree links")
	}

	links, err := f.Store.FindTreeLinks(tx, tree.FamilyTreeId)
	if err != nil {
		f.Store.Rollback(tx)
		return store.FamilyTree{}, errors.Wrap(err, "failed to reload family tree links")
	}
	tree.Links = links

	f.Store.Commit(tx)
	return tree, nil
}

func (f *FamilyTreeService) SaveAllFamilyTrees(ctx context.Context, requests []FamilyTreeTransport) ([]store.FamilyTree, error) {
	trees := []store.FamilyTree{}
	for _, request := range requests {
		tree, err := f.SaveFamilyTree(ctx, request)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

func (f *FamilyTreeService) upsertTree(tx *gorm.DB, request FamilyTreeTransport) (store.FamilyTree, error) {
	tree := store.FamilyTree{
		FamilyTreeId: request.Id,
		Name:         store.DbNullString(request.Name),
		Age:          store.DbNullInt64(request.Age),
		Generations:  store.DbNullInt64(request.Generations),
		AvatarUri:    store.DbNullString(request.AvatarUri),
	}

	if request.Id != 0 {
		updated, err := f.Store.UpdateFamilyTree(tx, tree)
		if err == nil {
			return updated, nil
		}
		if errors.Cause(err) != store.ErrFamilyTreeNotFound {
			return store.FamilyTree{}, err
		}
		// unknown or deleted id falls through to creation, matching upsert
		// semantics of save
		tree.FamilyTreeId = 0
	}

	return f.Store.AddFamilyTree(tx, tree)
}

type linkKey struct {
	FamilyId   int64
	Generation int
}

// reconcileLinks makes the persisted link set equal to the requested one with
// minimal writes. Links are matched by (familyId, generation); rows whose key
// is still requested are left untouched so link identity never churns.
func (f *FamilyTreeService) reconcileLinks(tx *gorm.DB, treeId int64, requested []TreeLinkTransport) error {
	existing, err := f.Store.FindTreeLinks(tx, treeId)
	if err != nil {
		return err
	}

	toDelete, toAdd := shared.Diff(existing, requested,
		func(link store.FamilyTreeFamily) linkKey {
			return linkKey{FamilyId: link.FamilyId, Generation: link.Generation}
		},
		func(request TreeLinkTransport) linkKey {
			return linkKey{FamilyId: request.FamilyId, Generation: request.Generation}
		},
	)

	if len(toDelete) > 0 {
		if err := f.Store.DeleteTreeLinks(tx, toDelete); err != nil {
			return err
		}
	}
	if len(toAdd) > 0 {
		newLinks := make([]store.FamilyTreeFamily, 0, len(toAdd))
		for _, request := range toAdd {
			newLinks = append(newLinks, store.FamilyTreeFamily{
				FamilyTreeId: treeId,
				FamilyId:     request.FamilyId,
				Generation:   request.Generation,
			})
		}
		if err := f.Store.AddTreeLinks(tx, newLinks); err != nil {
			return err
		}
	}
	return nil
}

func (f *FamilyTreeService) GetFamilyTree(ctx context.Context, request FamilyTreeTransport) (store.FamilyTree, error) {
	tree, err := f.Store.GetFamilyTree(nil, request.Id)
	if err != nil {
		return store.FamilyTree{}, errors.Wrap(err, "failed to get family tree")
	}
	return tree, nil
}

func (f *FamilyTreeService) ListFamilyTrees(ctx context.Context, name string, age int64) ([]store.FamilyTree, error) {
	trees, err := f.Store.ListFamilyTrees(nil, name, age)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list family trees")
	}
	return trees, nil
}

func (f *FamilyTreeService) DeleteFamilyTree(ctx context.Context, request FamilyTreeTransport) error {
	if err := f.Store.DeleteFamilyTree(nil, request.Id); err != nil {
		return errors.Wrap(err, "failed to delete family tree")
	}
	return nil
}
