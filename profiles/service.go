package profiles

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/hieungocdinh/mad-project-n16/storage"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/araddon/dateparse"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrDeathBeforeBirth = errors.New("death date cannot be earlier than birth date")
)

// RelationSummary is the derived relational context of one person. It is a
// read-only projection recomputed from family memberships on every call;
// nothing in it is persisted. Nil fields mean "not resolvable", not "null".
type RelationSummary struct {
	Father   *store.Profile
	Mother   *store.Profile
	Spouse   *store.Profile
	Children []store.Profile
}

func (r RelationSummary) Empty() bool {
	return r.Father == nil && r.Mother == nil && r.Spouse == nil && len(r.Children) == 0
}

type Service interface {
	CreateProfile(ctx context.Context, request ProfileTransport) (store.Profile, error)
	GetDetailProfile(ctx context.Context, request ProfileTransport) (store.Profile, RelationSummary, error)
	ListProfiles(ctx context.Context, familyId int64) ([]store.Profile, error)
	UpdateProfile(ctx context.Context, request ProfileTransport) (store.Profile, error)
}

type ProfileService struct {
	Store interface {
		Tx() *gorm.DB
		Commit(tx *gorm.DB)
		Rollback(tx *gorm.DB)
		AddUser(tx *gorm.DB, user store.User) (store.User, error)
		GetUsersByIds(tx *gorm.DB, userIds []int64) ([]store.User, error)
		ListFamiliesOfUser(tx *gorm.DB, userId int64) ([]store.Family, error)
		AddProfile(tx *gorm.DB, profile store.Profile) (store.Profile, error)
		UpdateProfile(tx *gorm.DB, profile store.Profile) (store.Profile, error)
		GetProfile(tx *gorm.DB, profileId int64) (store.Profile, error)
		GetProfileByUser(tx *gorm.DB, userId int64) (store.Profile, error)
		ListProfilesByFamily(tx *gorm.DB, familyId int64) ([]store.Profile, error)
	} `inject:""`
	Storage storage.Storage `inject:""`
}

// CreateProfile creates the profile together with its backing user account.
// The username is derived from the profile name, lowercased and stripped of
// diacritics.
func (p *ProfileService) CreateProfile(ctx context.Context, request ProfileTransport) (store.Profile, error) {
	if err := p.setAndStoreDecodedAvatar(ctx, &request); err != nil {
		return store.Profile{}, err
	}

	birthDate, deathDate, err := parseAndCheckDates(request.BirthDate, request.DeathDate)
	if err != nil {
		return store.Profile{}, err
	}

	tx := p.Store.Tx()

	user, err := p.Store.AddUser(tx, store.User{
		Username: store.DbNullString(normalizeUsername(request.LastName + request.FirstName)),
		Roles:    store.Roles{{Role: store.ROLE_USER}},
	})
	if err != nil {
		p.Store.Rollback(tx)
		return store.Profile{}, errors.Wrap(err, "failed to create user for profile")
	}

	profile, err := p.Store.AddProfile(tx, store.Profile{
		UserId:     user.UserId,
		FirstName:  store.DbNullString(request.FirstName),
		LastName:   store.DbNullString(request.LastName),
		Gender:     store.DbNullString(request.Gender),
		BirthDate:  birthDate,
		DeathDate:  deathDate,
		Biography:  store.DbNullString(request.Biography),
		Address:    store.DbNullString(request.Address),
		AvatarUri:  store.DbNullString(request.AvatarUri),
		Configured: false,
	})
	if err != nil {
		p.Store.Rollback(tx)
		return store.Profile{}, errors.Wrap(err, "failed to create profile")
	}

	p.Store.Commit(tx)
	return profile, nil
}

func (p *ProfileService) GetDetailProfile(ctx context.Context, request ProfileTransport) (store.Profile, RelationSummary, error) {
	profile, err := p.Store.GetProfile(nil, request.Id)
	if err != nil {
		return store.Profile{}, RelationSummary{}, errors.Wrap(err, "failed to get profile")
	}

	relations, err := p.resolveRelations(profile.UserId)
	if err != nil {
		return store.Profile{}, RelationSummary{}, errors.Wrap(err, "failed to resolve relations")
	}
	return profile, relations, nil
}

// resolveRelations classifies every family the user belongs to, one by one.
// A family listing the user among its children is the family of origin and
// yields father/mother; any other membership means the user is a partner, so
// the family is a family of choice and yields spouse plus children. Partner
// references that no longer resolve to a live profile are skipped.
func (p *ProfileService) resolveRelations(userId int64) (RelationSummary, error) {
	families, err := p.Store.ListFamiliesOfUser(nil, userId)
	if err != nil {
		return RelationSummary{}, err
	}

	relations := RelationSummary{}
	for _, family := range families {
		if family.IsChild(userId) {
			if family.Husband != nil {
				if father, err := p.Store.GetProfileByUser(nil, family.Husband.UserId); err == nil {
					relations.Father = &father
				}
			}
			if family.Wife != nil {
				if mother, err := p.Store.GetProfileByUser(nil, family.Wife.UserId); err == nil {
					relations.Mother = &mother
				}
			}
			continue
		}

		children, err := p.Store.GetUsersByIds(nil, family.ChildIds)
		if err != nil {
			return RelationSummary{}, err
		}
		for _, child := range children {
			if childProfile, err := p.Store.GetProfileByUser(nil, child.UserId); err == nil {
				relations.Children = append(relations.Children, childProfile)
			}
		}

		if family.Husband != nil && family.Husband.UserId == userId {
			if family.Wife != nil {
				if spouse, err := p.Store.GetProfileByUser(nil, family.Wife.UserId); err == nil {
					relations.Spouse = &spouse
				}
			}
		} else if family.Husband != nil {
			if spouse, err := p.Store.GetProfileByUser(nil, family.Husband.UserId); err == nil {
				relations.Spouse = &spouse
			}
		}
	}
	return relations, nil
}

func (p *ProfileService) ListProfiles(ctx context.Context, familyId int64) ([]store.Profile, error) {
	profiles, err := p.Store.ListProfilesByFamily(nil, familyId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profiles")
	}
	return profiles, nil
}

func (p *ProfileService) UpdateProfile(ctx context.Context, request ProfileTransport) (store.Profile, error) {
	if err := p.setAndStoreDecodedAvatar(ctx, &request); err != nil {
		return store.Profile{}, err
	}

	existing, err := p.Store.GetProfile(nil, request.Id)
	if err != nil {
		return store.Profile{}, errors.Wrap(err, "failed to update profile")
	}

	birthDate := existing.BirthDate
	deathDate := existing.DeathDate
	if request.BirthDate != "" {
		birthDate, err = dateparse.ParseIn(request.BirthDate, time.UTC)
		if err != nil {
			return store.Profile{}, err
		}
	}
	if request.DeathDate != "" {
		t, err := dateparse.ParseIn(request.DeathDate, time.UTC)
		if err != nil {
			return store.Profile{}, err
		}
		deathDate = &t
	}
	if deathDate != nil && deathDate.Before(birthDate) {
		return store.Profile{}, ErrDeathBeforeBirth
	}

	updated := existing
	updated.BirthDate = birthDate
	updated.DeathDate = deathDate
	if request.FirstName != "" {
		updated.FirstName = store.DbNullString(request.FirstName)
	}
	if request.LastName != "" {
		updated.LastName = store.DbNullString(request.LastName)
	}
	if request.Gender != "" {
		updated.Gender = store.DbNullString(request.Gender)
	}
	if request.Biography != "" {
		updated.Biography = store.DbNullString(request.Biography)
	}
	if request.Address != "" {
		updated.Address = store.DbNullString(request.Address)
	}
	if request.AvatarUri != "" {
		updated.AvatarUri = store.DbNullString(request.AvatarUri)
	}
	updated.Configured = true

	profile, err := p.Store.UpdateProfile(nil, updated)
	if err != nil {
		return store.Profile{}, errors.Wrap(err, "failed to update profile")
	}
	return profile, nil
}

func (p *ProfileService) setAndStoreDecodedAvatar(ctx context.Context, request *ProfileTransport) error {
	if strings.HasPrefix(request.AvatarUri, "data:image/jpeg;base64,") {
		encoded := strings.TrimPrefix(request.AvatarUri, "data:image/jpeg;base64,")

		var err error
		request.AvatarUri, err = p.Storage.Store(ctx, encoded, "image/jpeg")
		if err != nil {
			return errors.Wrap(err, "failed to store avatar")
		}
	}
	return nil
}

func parseAndCheckDates(rawBirth, rawDeath string) (time.Time, *time.Time, error) {
	var birthDate time.Time
	var deathDate *time.Time
	var err error

	if rawBirth != "" {
		birthDate, err = dateparse.ParseIn(rawBirth, time.UTC)
		if err != nil {
			return time.Time{}, nil, err
		}
	}
	if rawDeath != "" {
		t, err := dateparse.ParseIn(rawDeath, time.UTC)
		if err != nil {
			return time.Time{}, nil, err
		}
		deathDate = &t
	}
	if deathDate != nil && !birthDate.IsZero() && deathDate.Before(birthDate) {
		return time.Time{}, nil, ErrDeathBeforeBirth
	}
	return birthDate, deathDate, nil
}

var usernameNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeUsername(name string) string {
	normalized, _, err := transform.String(usernameNormalizer, name)
	if err != nil {
		normalized = name
	}
	normalized = strings.ReplaceAll(normalized, "đ", "d")
	normalized = strings.ReplaceAll(normalized, "Đ", "d")
	normalized = strings.ToLower(normalized)
	return strings.Join(strings.Fields(normalized), "")
}
