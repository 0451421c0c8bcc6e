package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error half of every non-2xx response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	// Details carries structured context such as config validation results.
	Details any `json:"details,omitempty"`
}

type APIError struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes v as the response body. The API serves live local state,
// so nothing is cacheable.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteErrorDetails(w, r, status, code, message, nil)
}

func WriteErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	WriteJSON(w, status, APIError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
		Details:   details,
	}})
}

// NoContent answers 204 for writes that return nothing.
func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
