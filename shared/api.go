package shared

import (
	"encoding/json"
	"net/http"
)

// apiError is the JSON shape of rejections served outside the go-kit error
// encoders, the firewall responses in particular.
type apiError struct {
	Error       bool   `json:"error"`
	Description string `json:"error_description"`
}

func NewError(description string) apiError {
	return apiError{
		Error:       true,
		Description: description,
	}
}

func HttpError(w http.ResponseWriter, apiErr apiError, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(apiErr)
}
