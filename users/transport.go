package users

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

type UserTransport struct {
	Id        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	FamilyIds []int64  `json:"familyIds,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Save(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSaveEndpoint(h.Service),
		decodeUserTransport,
		shared.EncodeResponse200,
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

func (h *HandlerFactory) ListWithoutFamily(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListWithoutFamilyEndpoint(h.Service),
		ignorePayload,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeGetOrDeleteRequest,
		shared.EncodeResponse204,
		opts...,
	)
}

func makeSaveEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserTransport)
		user, err := svc.SaveUser(ctx, req)
		if err != nil {
			return nil, err
		}
		return userView(user), nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserTransport)
		user, err := svc.GetUser(ctx, req.Id)
		if err != nil {
			return nil, err
		}
		return userView(user), nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		username := request.(string)
		users, err := svc.ListUsers(ctx, username)
		if err != nil {
			return nil, err
		}
		return usersView(users), nil
	}
}

func makeListWithoutFamilyEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		users, err := svc.ListUsersWithoutFamily(ctx)
		if err != nil {
			return nil, err
		}
		return usersView(users), nil
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserTransport)
		if err := svc.DeleteUser(ctx, req.Id); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func userView(user store.User) UserTransport {
	view := UserTransport{
		Id:       user.UserId,
		Username: user.Username.String,
		Email:    user.Email.String,
		Roles:    user.Roles.ToList(),
	}
	for _, family := range user.Families {
		view.FamilyIds = append(view.FamilyIds, family.FamilyId)
	}
	return view
}

func usersView(users []store.User) []UserTransport {
	views := []UserTransport{}
	for _, user := range users {
		views = append(views, userView(user))
	}
	return views
}

func decodeUserTransport(ctx context.Context, r *http.Request) (interface{}, error) {
	var request UserTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeGetOrDeleteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	userId, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		return nil, err
	}
	return UserTransport{Id: userId}, nil
}

func decodeListRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	return r.URL.Query().Get("username"), nil
}

func ignorePayload(ctx context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

func EncodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrInvalidEmail, ErrInvalidPasswordFormat:
		w.WriteHeader(http.StatusBadRequest)
	case store.ErrUserNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
