package shared

import (
	"context"
	"encoding/json"
	"net/http"
)

// go-kit response encoders shared by every transport. The success status is
// fixed per route when the handler is wired up.

func EncodeResponse200(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeWithStatus(w, http.StatusOK, response)
}

func EncodeResponse201(_ context.Context, w http.ResponseWriter, response interface{}) error {
	return encodeWithStatus(w, http.StatusCreated, response)
}

func EncodeResponse204(_ context.Context, w http.ResponseWriter, _ interface{}) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func encodeWithStatus(w http.ResponseWriter, status int, response interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}
