package authentication

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hieungocdinh/mad-project-n16/shared"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"
)

type AuthenticateTransport struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Login(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeLoginEndpoint(h.Service),
		decodeAuthenticateRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func makeLoginEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(AuthenticateTransport)
		token, err := svc.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		return token, nil
	}
}

func decodeAuthenticateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var request AuthenticateTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func EncodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrBadCredentials:
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
