package stories

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

type StoryTransport struct {
	Id            int64  `json:"id"`
	UserId        int64  `json:"userId,omitempty"`
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	StoryAvatar   string `json:"storyAvatar,omitempty"`
	CoverImageUri string `json:"coverImageUri,omitempty"`
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Add(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeAddEndpoint(h.Service),
		decodeStoryTransport,
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

func (h *HandlerFactory) Update(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeUpdateEndpoint(h.Service),
		decodeUpdateRequest,
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

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeGetOrDeleteRequest,
		shared.EncodeResponse204,
		opts...,
	)
}

func makeAddEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(StoryTransport)
		story, err := svc.AddStory(ctx, req)
		if err != nil {
			return nil, err
		}
		return storyView(story), nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(StoryTransport)
		story, err := svc.GetStory(ctx, req.Id)
		if err != nil {
			return nil, err
		}
		return storyView(story), nil
	}
}

func makeUpdateEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(StoryTransport)
		story, err := svc.UpdateStory(ctx, req)
		if err != nil {
			return nil, err
		}
		return storyView(story), nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		userId := request.(int64)
		stories, err := svc.ListStories(ctx, userId)
		if err != nil {
			return nil, err
		}
		views := []StoryTransport{}
		for _, story := range stories {
			views = append(views, storyView(story))
		}
		return views, nil
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(StoryTransport)
		if err := svc.DeleteStory(ctx, req.Id); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func storyView(story store.Story) StoryTransport {
	return StoryTransport{
		Id:            story.StoryId,
		UserId:        story.UserId,
		Title:         story.Title.String,
		Content:       story.Content.String,
		StoryAvatar:   story.StoryAvatar.String,
		CoverImageUri: story.CoverImageUri.String,
	}
}

func decodeStoryTransport(ctx context.Context, r *http.Request) (interface{}, error) {
	var request StoryTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeUpdateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var request StoryTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	storyId, err := strconv.ParseInt(mux.Vars(r)["storyId"], 10, 64)
	if err != nil {
		return nil, err
	}
	request.Id = storyId
	return request, nil
}

func decodeGetOrDeleteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	storyId, err := strconv.ParseInt(mux.Vars(r)["storyId"], 10, 64)
	if err != nil {
		return nil, err
	}
	return StoryTransport{Id: storyId}, nil
}

func decodeListRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		return int64(0), nil
	}
	userId, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return userId, nil
}

func EncodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case ErrEmptyTitle:
		w.WriteHeader(http.StatusBadRequest)
	case ErrNoRequester:
		w.WriteHeader(http.StatusUnauthorized)
	case ErrNotAuthor:
		w.WriteHeader(http.StatusForbidden)
	case store.ErrStoryNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
