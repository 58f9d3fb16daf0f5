package families

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hieungocdinh/mad-project-n16/storage"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

var (
	ErrPartnerIsChild = errors.New("husband and wife cannot be listed as children of their own family")
)

type Service interface {
	AddFamily(ctx context.Context, request FamilyTransport) (store.Family, []int64, error)
	UpdateFamily(ctx context.Context, request FamilyTransport) (store.Family, []int64, error)
	GetFamily(ctx context.Context, request FamilyTransport) (store.Family, error)
	ListFamilies(ctx context.Context) ([]store.Family, error)
	SearchFamiliesByName(ctx context.Context, name string) ([]store.Family, error)
	DeleteFamily(ctx context.Context, request FamilyTransport) error
	SuggestFamilies(ctx context.Context, userId int64) ([]string, error)
}

type FamilyService struct {
	Store interface {
		Tx() *gorm.DB
		Commit(tx *gorm.DB)
		Rollback(tx *gorm.DB)
		AddFamily(tx *gorm.DB, family store.Family) (store.Family, error)
		UpdateFamily(tx *gorm.DB, family store.Family) (store.Family, error)
		GetFamily(tx *gorm.DB, familyId int64) (store.Family, error)
		ListFamilies(tx *gorm.DB) ([]store.Family, error)
		SearchFamiliesByName(tx *gorm.DB, name string) ([]store.Family, error)
		DeleteFamily(tx *gorm.DB, familyId int64) error
		SetFamilyMembers(tx *gorm.DB, familyId int64, userIds []int64) error
		ClearFamilyMembers(tx *gorm.DB, familyId int64) error
		GetUser(tx *gorm.DB, userId int64) (store.User, error)
		GetProfileByUser(tx *gorm.DB, userId int64) (store.Profile, error)
	} `inject:""`
	Storage storage.Storage `inject:""`
}

func (f *FamilyService) AddFamily(ctx context.Context, request FamilyTransport) (store.Family, []int64, error) {
	if err := f.setAndStoreDecodedAvatar(ctx, &request); err != nil {
		return store.Family{}, nil, err
	}

	husband, err := f.getUserIfExists(nil, request.HusbandId)
	if err != nil {
		return store.Family{}, nil, errors.Wrap(err, "failed to resolve husband")
	}
	wife, err := f.getUserIfExists(nil, request.WifeId)
	if err != nil {
		return store.Family{}, nil, errors.Wrap(err, "failed to resolve wife")
	}

	if err := checkPartnersNotChildren(husband, wife, request.ChildIds); err != nil {
		return store.Family{}, nil, err
	}

	tx := f.Store.Tx()

	family, err := f.Store.AddFamily(tx, store.Family{
		Name:      store.DbNullString(request.Name),
		AvatarUri: store.DbNullString(request.AvatarUri),
		HusbandId: userRef(husband),
		WifeId:    userRef(wife),
		Status:    store.STATUS_PENDING,
		ChildIds:  request.ChildIds,
	})
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to add family")
	}
	family.Husband = husband
	family.Wife = wife

	dropped, err := f.linkMembers(tx, &family, husband, wife)
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to link family members")
	}

	f.Store.Commit(tx)
	return family, dropped, nil
}

func (f *FamilyService) UpdateFamily(ctx context.Context, request FamilyTransport) (store.Family, []int64, error) {
	if err := f.setAndStoreDecodedAvatar(ctx, &request); err != nil {
		return store.Family{}, nil, err
	}

	tx := f.Store.Tx()

	existing, err := f.Store.GetFamily(tx, request.Id)
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to update family")
	}

	husband, err := f.getUserIfExists(tx, request.HusbandId)
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to resolve husband")
	}
	wife, err := f.getUserIfExists(tx, request.WifeId)
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to resolve wife")
	}

	if err := checkPartnersNotChildren(husband, wife, request.ChildIds); err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, err
	}

	// sever the old membership edges before linking the new member set, so no
	// previously linked user keeps a stale back-reference
	if err := f.Store.ClearFamilyMembers(tx, existing.FamilyId); err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to unlink old family members")
	}

	// every edit puts the family back under review
	family, err := f.Store.UpdateFamily(tx, store.Family{
		FamilyId:  existing.FamilyId,
		Name:      store.DbNullString(request.Name),
		AvatarUri: store.DbNullString(request.AvatarUri),
		HusbandId: userRef(husband),
		WifeId:    userRef(wife),
		Status:    store.STATUS_PENDING,
		ChildIds:  request.ChildIds,
	})
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to update family")
	}
	family.Husband = husband
	family.Wife = wife

	dropped, err := f.linkMembers(tx, &family, husband, wife)
	if err != nil {
		f.Store.Rollback(tx)
		return store.Family{}, nil, errors.Wrap(err, "failed to link family members")
	}

	f.Store.Commit(tx)
	return family, dropped, nil
}

// linkMembers resolves the member id set (children plus both partners) and
// restores the symmetry invariant: every linked user carries the family in its
// family set and the family carries the user in its member set. Ids that do
// not resolve to a live user are dropped, not fatal; the dropped ids are
// returned so stricter callers can refuse them.
func (f *FamilyService) linkMembers(tx *gorm.DB, family *store.Family, husband, wife *store.User) ([]int64, error) {
	memberIds := make([]int64, 0, len(family.ChildIds)+2)
	memberIds = append(memberIds, family.ChildIds...)
	if husband != nil {
		memberIds = append(memberIds, husband.UserId)
	}
	if wife != nil {
		memberIds = append(memberIds, wife.UserId)
	}

	dropped := []int64{}
	linked := []int64{}
	seen := map[int64]bool{}
	family.Members = []store.User{}
	for _, memberId := range memberIds {
		if seen[memberId] {
			continue
		}
		seen[memberId] = true

		user, err := f.Store.GetUser(tx, memberId)
		if errors.Cause(err) == store.ErrUserNotFound {
			dropped = append(dropped, memberId)
			continue
		}
		if err != nil {
			return nil, err
		}

		user.Families = append(user.Families, *family)
		family.Members = append(family.Members, user)
		linked = append(linked, user.UserId)
	}

	if err := f.Store.SetFamilyMembers(tx, family.FamilyId, linked); err != nil {
		return nil, err
	}
	return dropped, nil
}

func (f *FamilyService) GetFamily(ctx context.Context, request FamilyTransport) (store.Family, error) {
	family, err := f.Store.GetFamily(nil, request.Id)
	if err != nil {
		return store.Family{}, errors.Wrap(err, "failed to get family")
	}
	return family, nil
}

func (f *FamilyService) ListFamilies(ctx context.Context) ([]store.Family, error) {
	families, err := f.Store.ListFamilies(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list families")
	}
	return families, nil
}

func (f *FamilyService) SearchFamiliesByName(ctx context.Context, name string) ([]store.Family, error) {
	families, err := f.Store.SearchFamiliesByName(nil, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search families")
	}
	return families, nil
}

func (f *FamilyService) DeleteFamily(ctx context.Context, request FamilyTransport) error {
	if err := f.Store.DeleteFamily(nil, request.Id); err != nil {
		return errors.Wrap(err, "failed to delete family")
	}
	return nil
}

// SuggestFamilies scans every live family and collects, in scan order, the
// names of those whose husband shares the user's last name. Exact match,
// case-insensitive, husband's surname only.
func (f *FamilyService) SuggestFamilies(ctx context.Context, userId int64) ([]string, error) {
	user, err := f.Store.GetUser(nil, userId)
	if errors.Cause(err) == store.ErrUserNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest families")
	}

	profile, err := f.Store.GetProfileByUser(nil, user.UserId)
	if errors.Cause(err) == store.ErrProfileNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest families")
	}
	if !profile.LastName.Valid {
		return []string{}, nil
	}

	families, err := f.Store.ListFamilies(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest families")
	}

	suggested := []string{}
	for _, family := range families {
		if family.Husband == nil {
			continue
		}
		husbandProfile, err := f.Store.GetProfileByUser(nil, family.Husband.UserId)
		if err != nil || !husbandProfile.LastName.Valid {
			continue
		}
		if strings.EqualFold(profile.LastName.String, husbandProfile.LastName.String) {
			suggested = append(suggested, family.Name.String)
		}
	}
	return suggested, nil
}

// getUserIfExists treats only a missing user as absence; any other store
// failure is surfaced so a transient outage never records a family without
// its partner.
func (f *FamilyService) getUserIfExists(tx *gorm.DB, userId int64) (*store.User, error) {
	if userId == 0 {
		return nil, nil
	}
	user, err := f.Store.GetUser(tx, userId)
	if errors.Cause(err) == store.ErrUserNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (f *FamilyService) setAndStoreDecodedAvatar(ctx context.Context, request *FamilyTransport) error {
	if strings.HasPrefix(request.AvatarUri, "data:image/jpeg;base64,") {
		encoded := strings.TrimPrefix(request.AvatarUri, "data:image/jpeg;base64,")

		var err error
		request.AvatarUri, err = f.Storage.Store(ctx, encoded, "image/jpeg")
		if err != nil {
			return errors.Wrap(err, "failed to store avatar")
		}
	}
	return nil
}

func checkPartnersNotChildren(husband, wife *store.User, childIds []int64) error {
	for _, childId := range childIds {
		if husband != nil && husband.UserId == childId {
			return ErrPartnerIsChild
		}
		if wife != nil && wife.UserId == childId {
			return ErrPartnerIsChild
		}
	}
	return nil
}

func userRef(user *store.User) sql.NullInt64 {
	if user == nil {
		return sql.NullInt64{}
	}
	return store.DbNullInt64(user.UserId)
}
