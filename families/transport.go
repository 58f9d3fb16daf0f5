package families

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/store"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

var (
	ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")
)

type FamilyTransport struct {
	Id                  int64   `json:"id"`
	Name                string  `json:"name"`
	AvatarUri           string  `json:"avatarUri"`
	HusbandId           int64   `json:"husbandId,omitempty"`
	WifeId              int64   `json:"wifeId,omitempty"`
	ChildIds            []int64 `json:"childIds"`
	Status              string  `json:"status,omitempty"`
	MemberIds           []int64 `json:"memberIds,omitempty"`
	UnresolvedMemberIds []int64 `json:"unresolvedMemberIds,omitempty"`
}

type listFamiliesRequest struct {
	Name string
}

type suggestFamiliesRequest struct {
	UserId int64
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Add(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEndpoint(h.Service),
		decodeFamilyTransport,
		shared.EncodeResponse201,
		opts...,
	)
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		decodeGetOrDeleteFamilyTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateFamilyRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeGetOrDeleteFamilyTransport,
		shared.EncodeResponse204,
		opts...,
	)
}

func (h *HandlerFactory) List(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListEndpoint(h.Service),
		decodeListFamiliesRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Suggestions(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSuggestionsEndpoint(h.Service),
		decodeSuggestFamiliesRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeAddEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTransport)
		family, dropped, err := svc.AddFamily(ctx, req)
		if err != nil {
			return nil, err
		}
		return familyView(family, dropped), nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTransport)
		family, err := svc.GetFamily(ctx, req)
		if err != nil {
			return nil, err
		}
		return familyView(family, nil), nil
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTransport)
		family, dropped, err := svc.UpdateFamily(ctx, req)
		if err != nil {
			return nil, err
		}
		return familyView(family, dropped), nil
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTransport)
		if err := svc.DeleteFamily(ctx, req); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(listFamiliesRequest)

		var families []store.Family
		var err error
		if req.Name != "" {
			families, err = svc.SearchFamiliesByName(ctx, req.Name)
		} else {
			families, err = svc.ListFamilies(ctx)
		}
		if err != nil {
			return nil, err
		}

		familiesRet := []FamilyTransport{}
		for _, family := range families {
			familiesRet = append(familiesRet, familyView(family, nil))
		}
		return familiesRet, nil
	}
}

func makeSuggestionsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(suggestFamiliesRequest)
		return svc.SuggestFamilies(ctx, req.UserId)
	}
}

func familyView(family store.Family, dropped []int64) FamilyTransport {
	memberIds := []int64{}
	for _, member := range family.Members {
		memberIds = append(memberIds, member.UserId)
	}
	return FamilyTransport{
		Id:                  family.FamilyId,
		Name:                family.Name.String,
		AvatarUri:           family.AvatarUri.String,
		HusbandId:           family.HusbandId.Int64,
		WifeId:              family.WifeId.Int64,
		ChildIds:            family.ChildIds,
		Status:              family.Status,
		MemberIds:           memberIds,
		UnresolvedMemberIds: dropped,
	}
}

func decodeFamilyTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request FamilyTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeGetOrDeleteFamilyTransport(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	familyId, ok := vars["familyId"]
	if !ok {
		return nil, ErrBadRouting
	}
	id, err := strconv.ParseInt(familyId, 10, 64)
	if err != nil {
		return nil, err
	}
	return FamilyTransport{Id: id}, nil
}

func decodeUpdateFamilyRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	familyId, ok := vars["familyId"]
	if !ok {
		return nil, ErrBadRouting
	}
	id, err := strconv.ParseInt(familyId, 10, 64)
	if err != nil {
		return nil, err
	}

	var request FamilyTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	request.Id = id
	return request, nil
}

func decodeListFamiliesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return listFamiliesRequest{Name: r.URL.Query().Get("name")}, nil
}

func decodeSuggestFamiliesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	userId, ok := vars["userId"]
	if !ok {
		return nil, ErrBadRouting
	}
	id, err := strconv.ParseInt(userId, 10, 64)
	if err != nil {
		return nil, err
	}
	return suggestFamiliesRequest{UserId: id}, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrPartnerIsChild:
		w.WriteHeader(http.StatusBadRequest)
	case store.ErrFamilyNotFound, store.ErrUserNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
