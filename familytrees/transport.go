package familytrees

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

type FamilyTreeTransport struct {
	Id          int64               `json:"id"`
	Name        string              `json:"name"`
	Age         int64               `json:"age,omitempty"`
	Generations int64               `json:"generationNumbers,omitempty"`
	AvatarUri   string              `json:"avatarUri,omitempty"`
	Families    []TreeLinkTransport `json:"families"`
}

type TreeLinkTransport struct {
	FamilyId   int64 `json:"familyId"`
	Generation int   `json:"generation"`
}

type listFamilyTreesRequest struct {
	Name string
	Age  int64
}

type HandlerFactory struct {
	Service Service `inject:""`
}

func (h *HandlerFactory) Save(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSaveEndpoint(h.Service),
		decodeFamilyTreeTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) SaveAll(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeSaveAllEndpoint(h.Service),
		decodeFamilyTreeList,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Get(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeGetEndpoint(h.Service),
		decodeGetOrDeleteFamilyTreeTransport,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) List(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeListEndpoint(h.Service),
		decodeListFamilyTreesRequest,
		shared.EncodeResponse200,
		opts...,
	)
}

func (h *HandlerFactory) Delete(opts []kithttp.ServerOption) *kithttp.Server {
	return kithttp.NewServer(
		makeDeleteEndpoint(h.Service),
		decodeGetOrDeleteFamilyTreeTransport,
		shared.EncodeResponse204,
		opts...,
	)
}

func makeSaveEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTreeTransport)
		tree, err := svc.SaveFamilyTree(ctx, req)
		if err != nil {
			return nil, err
		}
		return treeView(tree), nil
	}
}

func makeSaveAllEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.([]FamilyTreeTransport)
		trees, err := svc.SaveAllFamilyTrees(ctx, req)
		if err != nil {
			return nil, err
		}
		treesRet := []FamilyTreeTransport{}
		for _, tree := range trees {
			treesRet = append(treesRet, treeView(tree))
		}
		return treesRet, nil
	}
}

func makeGetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTreeTransport)
		tree, err := svc.GetFamilyTree(ctx, req)
		if err != nil {
			return nil, err
		}
		return treeView(tree), nil
	}
}

func makeListEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(listFamilyTreesRequest)
		trees, err := svc.ListFamilyTrees(ctx, req.Name, req.Age)
		if err != nil {
			return nil, err
		}
		treesRet := []FamilyTreeTransport{}
		for _, tree := range trees {
			treesRet = append(treesRet, treeView(tree))
		}
		return treesRet, nil
	}
}

func makeDeleteEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(FamilyTreeTransport)
		if err := svc.DeleteFamilyTree(ctx, req); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

func treeView(tree store.FamilyTree) FamilyTreeTransport {
	links := []TreeLinkTransport{}
	for _, link := range tree.Links {
		links = append(links, TreeLinkTransport{
			FamilyId:   link.FamilyId,
			Generation: link.Generation,
		})
	}
	return FamilyTreeTransport{
		Id:          tree.FamilyTreeId,
		Name:        tree.Name.String,
		Age:         tree.Age.Int64,
		Generations: tree.Generations.Int64,
		AvatarUri:   tree.AvatarUri.String,
		Families:    links,
	}
}

func decodeFamilyTreeTransport(_ context.Context, r *http.Request) (interface{}, error) {
	var request FamilyTreeTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeFamilyTreeList(_ context.Context, r *http.Request) (interface{}, error) {
	var request []FamilyTreeTransport
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeGetOrDeleteFamilyTreeTransport(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	treeId, ok := vars["familyTreeId"]
	if !ok {
		return nil, ErrBadRouting
	}
	id, err := strconv.ParseInt(treeId, 10, 64)
	if err != nil {
		return nil, err
	}
	return FamilyTreeTransport{Id: id}, nil
}

func decodeListFamilyTreesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	request := listFamilyTreesRequest{Name: r.URL.Query().Get("name")}
	if rawAge := r.URL.Query().Get("age"); rawAge != "" {
		age, err := strconv.ParseInt(rawAge, 10, 64)
		if err != nil {
			return nil, err
		}
		request.Age = age
	}
	return request, nil
}

// encode errors from business-logic
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch errors.Cause(err) {
	case store.ErrFamilyTreeNotFound:
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}
