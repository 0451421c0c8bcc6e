package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/config"
)

const maxBody = 1 << 20

func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := make([]string, 0, len(m))
	for k := range m {
		allowed = append(allowed, k)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// decodeJSON reads one JSON value into v, rejecting unknown fields and
// trailing data. It writes the 400 itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return false
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: trailing data")
		return false
	}
	return true
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("level=error msg=\"handler\" request_id=%s path=%s err=%v", RequestIDFrom(r.Context()), r.URL.Path, err)
	WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
}

func currentConfig(v *atomic.Value) config.Config {
	return v.Load().(config.Config)
}

// pathDate reads the {date} path value. "today" resolves in the configured
// timezone.
func pathDate(w http.ResponseWriter, r *http.Request, cfg config.Config, now func() time.Time) (string, bool) {
	date := r.PathValue("date")
	if date == "today" {
		return assign.Today(now(), cfg.Location()), true
	}
	if err := assign.CheckDate(date); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_date", err.Error())
		return "", false
	}
	return date, true
}

// localOnly refuses requests that do not come from the loopback interface.
func localOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
			WriteError(w, r, http.StatusForbidden, "forbidden", "local requests only")
			return
		}
		next(w, r)
	}
}
