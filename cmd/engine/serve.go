package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/calendar"
	"daymark-engine/internal/config"
	"daymark-engine/internal/events"
	"daymark-engine/internal/httpapi"
	"daymark-engine/internal/poll"
	"daymark-engine/internal/rank"
	"daymark-engine/internal/scheduler"
	"daymark-engine/internal/secrets"
	"daymark-engine/internal/timeshift"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run scheduled fetches (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

const fetchTask = "fetch"

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	fl, err := lockDataDir(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	cfg, userCfgPath, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)
	liveCfg := func() config.Config { return currentConfig(&cfgVal) }

	db, cat, err := openStore(ctx, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	// Role rules and board lists are read once; changing them needs a restart.
	scorer := rank.NewMatchScorer(rank.NewRoleTable(cfg.RoleOverrides()))
	ranker := rank.NewCache(scorer)
	engine := assign.New(db, cat, db, ranker, scorer, assign.Options{
		JobsPerDay:   cfg.Jobs.PerDay,
		DisplayLimit: cfg.Jobs.DisplayLimit,
	})

	hub := events.NewHub()
	runner := poll.NewRunner(db, cat, poll.BuildRegistry(cfg), hub, liveCfg)

	sched := scheduler.New(ctx)
	if err := sched.Add(fetchTask, cfg.Polling.FetchCron, func(ctx context.Context) error {
		_, err := runner.RunOnce(ctx)
		if errors.Is(err, poll.ErrRunning) {
			return nil
		}
		return err
	}); err != nil {
		return err
	}

	mux := httpapi.NewMux(httpapi.Deps{
		BaseCtx:     ctx,
		Store:       db,
		Catalog:     cat,
		Ranker:      ranker,
		Engine:      engine,
		Schedules:   timeshift.NewCache(),
		Runner:      runner,
		Calendar:    calendar.NewGoogleBusy(secrets.Lookup(secrets.GoogleCalendarToken), ""),
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		OnConfig: func(c config.Config) {
			engine.SetLimits(c.Jobs.PerDay, c.Jobs.DisplayLimit)
			if err := sched.Reschedule(fetchTask, c.Polling.FetchCron); err != nil {
				log.Printf("[config] reschedule fetch: %v", err)
			}
		},
	})

	srv := &http.Server{
		Handler:           httpapi.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	token := strings.TrimSpace(os.Getenv("DAYMARK_SHUTDOWN_TOKEN"))
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return fmt.Errorf("shutdown token: %w", err)
		}
	}
	tokenPath, err := writeToken(dataDir, token)
	if err != nil {
		return fmt.Errorf("write shutdown token: %w", err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv))

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("engine listening on http://%s (data=%s token=%s)", addr, dataDir, tokenPath)

	sched.Start()
	log.Printf("[scheduler] next fetch=%s", sched.Next(fetchTask).Format(time.RFC3339))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Printf("engine shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			sched.Stop(context.Background())
			return err
		}
	}

	// ends SSE streams and background fetches
	stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("http shutdown: %v", err)
	}
	sched.Stop(shutdownCtx)
	return nil
}
