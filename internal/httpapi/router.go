// Package httpapi serves the engine's JSON API and SSE stream.
package httpapi

import (
	"net/http"
	"time"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	if d.Now == nil {
		d.Now = time.Now
	}
	mux := http.NewServeMux()

	// Jobs
	jh := JobsHandler{BaseCtx: d.BaseCtx, Store: d.Store, Catalog: d.Catalog, Ranker: d.Ranker, Runner: d.Runner, CfgVal: d.CfgVal}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.Health,
	}))
	mux.HandleFunc("/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/jobs/fetch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: jh.Fetch,
	}))
	mux.HandleFunc("/jobs/fetch/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.FetchStatus,
	}))

	// Daily slate
	dh := DailyHandler{Engine: d.Engine, CfgVal: d.CfgVal, Hub: d.Hub, Now: d.Now}
	mux.HandleFunc("/daily/{date}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    dh.Get,
		http.MethodDelete: dh.Clear,
	}))
	mux.HandleFunc("/daily/{date}/applied", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Applied,
	}))
	mux.HandleFunc("/daily/{date}/skipped", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Skipped,
	}))
	mux.HandleFunc("/daily/{date}/refresh", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Refresh,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Stats,
	}))
	mux.HandleFunc("/history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.History,
	}))
	mux.HandleFunc("/history/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch: dh.UpdateApplication,
	}))

	// Profile
	ph := ProfileHandler{Store: d.Store, Engine: d.Engine, CfgVal: d.CfgVal, Hub: d.Hub, Now: d.Now}
	mux.HandleFunc("/profile", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Get,
		http.MethodPut: ph.Put,
	}))
	mux.HandleFunc("/profile/resume", methodMux(map[string]http.HandlerFunc{
		http.MethodPut:    ph.PutResume,
		http.MethodDelete: ph.DeleteResume,
	}))

	// Tasks and schedule
	th := TasksHandler{Store: d.Store, CfgVal: d.CfgVal, Hub: d.Hub, Now: d.Now}
	mux.HandleFunc("/tasks", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  th.List,
		http.MethodPost: th.Create,
	}))
	mux.HandleFunc("/tasks/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch:  th.Update,
		http.MethodDelete: th.Delete,
	}))
	sh := ScheduleHandler{Store: d.Store, Schedules: d.Schedules, Calendar: d.Calendar, CfgVal: d.CfgVal, Hub: d.Hub, Now: d.Now}
	mux.HandleFunc("/schedule/{date}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Get,
	}))
	mux.HandleFunc("/calendar/busy/{date}", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: sh.PutBusy,
	}))
	mux.HandleFunc("/calendar/sync/{date}", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Sync,
	}))

	// Config
	ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath, Hub: d.Hub, OnConfig: d.OnConfig}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: localOnly(ch.Put),
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.Validate,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets are write-only over HTTP
	var sech SecretsHandler
	mux.HandleFunc("/secrets", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sech.Status,
	}))
	mux.HandleFunc("/secrets/{name}", methodMux(map[string]http.HandlerFunc{
		http.MethodPut:    localOnly(sech.Set),
		http.MethodDelete: localOnly(sech.Delete),
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}

// Handler wraps mux in the standard middleware chain.
func Handler(mux http.Handler) http.Handler {
	return Chain(mux, RequestID, Recover, AccessLog, Cors)
}
