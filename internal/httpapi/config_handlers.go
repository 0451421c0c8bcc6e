package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"daymark-engine/internal/config"
	"daymark-engine/internal/events"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	Hub         *events.Hub
	OnConfig    func(config.Config)
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, currentConfig(h.CfgVal))
}

// Put validates, saves and swaps in a full config. Keys left out of the
// body take their defaults.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	incoming := config.Default()
	if !decodeJSON(w, r, &incoming) {
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteErrorDetails(w, r, http.StatusBadRequest, "invalid_config", "config has errors", vr)
		return
	}

	saved, err := config.SaveAtomic(h.UserCfgPath, normalized)
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.CfgVal.Store(saved)
	if h.OnConfig != nil {
		h.OnConfig(saved)
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.ConfigUpdated, nil)
	WriteJSON(w, http.StatusOK, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	WriteJSON(w, http.StatusOK, map[string]any{"path": abs})
}

// Validate checks the posted config, or the live one when the body is
// empty, without saving.
func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if len(body) > 0 {
		cfg = config.Default()
		if err := json.Unmarshal(body, &cfg); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
			return
		}
	}
	_, vr := config.NormalizeAndValidate(cfg)
	if vr.Errors == nil {
		vr.Errors = []string{}
	}
	if vr.Warnings == nil {
		vr.Warnings = []string{}
	}
	WriteJSON(w, http.StatusOK, vr)
}
