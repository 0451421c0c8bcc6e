package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"daymark-engine/internal/catalog"
	"daymark-engine/internal/poll"
	"daymark-engine/internal/rank"
	"daymark-engine/internal/store"
)

type JobsHandler struct {
	BaseCtx context.Context
	Store   *store.DB
	Catalog *catalog.Catalog
	Ranker  *rank.Cache
	Runner  *poll.Runner
	CfgVal  *atomic.Value // stores config.Config
}

func (h JobsHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"jobs": h.Catalog.Len(),
	})
}

// List returns the ranked pool for the current user. ?roles=a,b replaces
// the profile's role filter and ?limit=n caps the result.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	prof, err := h.Store.Profile(r.Context(), cfg.App.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	q := r.URL.Query()
	us := prof.Skills
	if q.Has("roles") {
		us.RoleTypes = splitList(q.Get("roles"))
	}

	version, jobs, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	ranked := h.Ranker.Rank(version, jobs, us, prof.HasResume())

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_limit", "limit must be a non-negative integer")
			return
		}
		if n < len(ranked) {
			ranked = ranked[:n]
		}
	}
	WriteJSON(w, http.StatusOK, ranked)
}

// Fetch starts an aggregator run in the background.
func (h JobsHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	err := h.Runner.Start(h.BaseCtx)
	if errors.Is(err, poll.ErrRunning) {
		WriteError(w, r, http.StatusConflict, "fetch_running", err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (h JobsHandler) FetchStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Runner.Status())
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
