package httpapi

import (
	"errors"
	"net/http"

	"daymark-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Value string `json:"value"`
}

// Status lists which credentials are set. Values are never returned.
func (h SecretsHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, secrets.Status())
}

func (h SecretsHandler) Set(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !secrets.Known(name) {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret "+name)
		return
	}
	var req setSecretReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := secrets.Set(name, req.Value); err != nil {
		if errors.Is(err, secrets.ErrUnknown) {
			WriteError(w, r, http.StatusNotFound, "unknown_secret", err.Error())
			return
		}
		WriteError(w, r, http.StatusBadRequest, "secret_not_stored", "failed to store secret: "+err.Error())
		return
	}
	NoContent(w)
}

func (h SecretsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := secrets.Delete(name); err != nil {
		if errors.Is(err, secrets.ErrUnknown) {
			WriteError(w, r, http.StatusNotFound, "unknown_secret", err.Error())
			return
		}
		internalError(w, r, err)
		return
	}
	NoContent(w)
}
