package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"daymark-engine/internal/catalog"
	"daymark-engine/internal/config"
	"daymark-engine/internal/httpapi"
	"daymark-engine/internal/store"
)

var errLocked = errors.New("another engine is using this data dir")

// resolveDataDir picks --data-dir, then DAYMARK_DATA_DIR, then ~/.daymark.
func resolveDataDir() (string, error) {
	dir := strings.TrimSpace(dataDirFlag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv("DAYMARK_DATA_DIR"))
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		dir = filepath.Join(home, ".daymark")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// lockDataDir takes an exclusive lock on <dataDir>/engine.lock without
// blocking.
func lockDataDir(dataDir string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(dataDir, "engine.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", errLocked, dataDir)
	}
	return fl, nil
}

// loadConfig bootstraps and loads <dataDir>/config.yml, overlays
// <dataDir>/companies.yml and validates the result. Warnings are logged.
func loadConfig(dataDir string) (config.Config, string, error) {
	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, "", err
	}
	if err := config.OverlayCompanies(&cfg, filepath.Join(dataDir, "companies.yml")); err != nil {
		return config.Config{}, "", err
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if err := res.Err(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, userCfgPath, nil
}

// openStore opens and migrates <dataDir>/engine.db and loads its jobs into
// a fresh catalog.
func openStore(ctx context.Context, dataDir string) (*store.DB, *catalog.Catalog, error) {
	dbPath := filepath.Join(dataDir, "engine.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	if err := store.Migrate(db.Pool); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	cat := catalog.New()
	if err := cat.Load(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("load jobs: %w", err)
	}
	return db, cat, nil
}

func currentConfig(v *atomic.Value) config.Config {
	return v.Load().(config.Config)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// writeToken stores the shutdown token where a desktop shell can read it.
func writeToken(dataDir, token string) (string, error) {
	path := filepath.Join(dataDir, "engine.token")
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// shutdownHandler stops srv when a loopback caller presents the token in
// X-Shutdown-Token.
func shutdownHandler(token string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			httpapi.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "POST only")
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
			httpapi.WriteError(w, r, http.StatusForbidden, "forbidden", "local requests only")
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			httpapi.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "bad shutdown token")
			return
		}

		httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "shutting down"})

		// respond first, then shut down
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
