package profiles

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type ProfileTransport struct {
	Id         int64               `json:"id"`
	UserId     int64               `json:"userId,omitempty"`
	FirstName  string              `json:"firstName"`
	LastName   string              `json:"lastName"`
	Gender     string              `json:"gender,omitempty"`
	BirthDate  string              `json:"birthDate,omitempty"`
	DeathDate  string              `json:"deathDate,omitempty"`
	Biography  string              `json:"biography,omitempty"`
	Address    string              `json:"address,omitempty"`
	AvatarUri  string              `json:"avatarUri,omitempty"`
	Configured bool                `json:"configured"`
	Relations  *RelationsTransport `json:"relations,omitempty"`
}

type RelationsTransport struct {
	Father   *ProfileTransport  `json:"father,omitempty"`
	Mother   *ProfileTransport  `json:"mother,omitempty"`
	Spouse   *ProfileTransport  `json:"spouse,omitempty"`
	Children []ProfileTransport `json:"children,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Create(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeCreateEndpoint(h.Service),
		decodeProfileRequest,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		decodeGetOrDeleteRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) List(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListEndpoint(h.Service),
		decodeListRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeCreateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ProfileTransport)
		profile, err := svc.CreateProfile(ctx, req)
		if err != nil {
			return nil, err
		}
		return profileView(profile, RelationSummary{}), nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ProfileTransport)
		profile, relations, err := svc.GetDetailProfile(ctx, req)
		if err != nil {
			return nil, err
		}
		return profileView(profile, relations), nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		familyId := request.(int64)
		profiles, err := svc.ListProfiles(ctx, familyId)
		if err != nil {
			return nil, err
		}
		views := []ProfileTransport{}
		for _, profile := range profiles {
			views = append(views, profileView(profile, RelationSummary{}))
		}
		return views, nil
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ProfileTransport)
		profile, err := svc.UpdateProfile(ctx, req)
		if err != nil {
			return nil, err
		}
		return profileView(profile, RelationSummary{}), nil
	}
}

func profileView(profile store.Profile, relations RelationSummary) ProfileTransport {
	view := ProfileTransport{
		Id:         profile.ProfileId,
		UserId:     profile.UserId,
		FirstName:  profile.FirstName.String,
		LastName:   profile.LastName.String,
		Gender:     profile.Gender.String,
		Biography:  profile.Biography.String,
		Address:    profile.Address.String,
		AvatarUri:  profile.AvatarUri.String,
		Configured: profile.Configured,
	}
	if !profile.BirthDate.IsZero() {
		view.BirthDate = profile.BirthDate.Format(time.RFC3339)
	}
	if profile.DeathDate != nil {
		view.DeathDate = profile.DeathDate.Format(time.RFC3339)
	}
	if !relations.Empty() {
		view.Relations = relationsView(relations)
	}
	return view
}

func relationsView(relations RelationSummary) *RelationsTransport {
	view := &RelationsTransport{}
	if relations.Father != nil {
		father := profileView(*relations.Father, RelationSummary{})
		view.Father = &father
	}
	if relations.Mother != nil {
		mother := profileView(*relations.Mother, RelationSummary{})
		view.Mother = &mother
	}
	if relations.Spouse != nil {
		spouse := profileView(*relations.Spouse, RelationSummary{})
		view.Spouse = &spouse
	}
	for _, child := range relations.Children {
		view.Children = append(view.Children, profileView(child, RelationSummary{}))
	}
	return view
}

func decodeProfileRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var request ProfileTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeGetOrDeleteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	profileId, err := strconv.ParseInt(mux.Vars(r)["profileId"], 10, 64)
	if err != nil {
		return nil, err
	}
	return ProfileTransport{Id: profileId}, nil
}

func decodeUpdateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var request ProfileTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	profileId, err := strconv.ParseInt(mux.Vars(r)["profileId"], 10, 64)
	if err != nil {
		return nil, err
	}
	request.Id = profileId
	return request, nil
}

func decodeListRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	familyId, err := strconv.ParseInt(mux.Vars(r)["familyId"], 10, 64)
	if err != nil {
		return nil, err
	}
	return familyId, nil
}

func EncodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrDeathBeforeBirth:
		w.WriteHeader(http.StatusBadRequest)
	case store.ErrProfileNotFound, store.ErrUserNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
