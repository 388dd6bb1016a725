package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"teamcal/internal/capture"
	"teamcal/internal/config"
	"teamcal/internal/feeds"
	"teamcal/internal/ics"
	appLog "teamcal/internal/log"
	"teamcal/internal/store"
	"teamcal/internal/web"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

// flagConfig holds CLI flag values; they override the config file.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	snapshot   bool
	debug      bool
}

// app bundles the long-lived components shared by every run mode.
type app struct {
	conf      *config.Config
	loc       *time.Location
	store     *store.Store
	refresher *feeds.Refresher
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	level := conf.LogLevel
	if flags.debug {
		level = "debug"
	}
	appLog.Configure(level, conf.LogEncoding)

	appLog.Info("teamcal starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"language", conf.Language,
		"theme", conf.Theme,
		"data_path", conf.DataPath,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"once", flags.once,
		"snapshot", flags.snapshot,
	)

	a, err := newApp(conf, flags.debug)
	if err != nil {
		appLog.Error("failed to initialize", err)
		appLog.Sync()
		os.Exit(1)
	}

	var code int
	switch {
	case flags.once:
		code = a.runOnce()
	case flags.snapshot:
		code = a.runSnapshot()
	default:
		code = a.serve()
	}

	appLog.Info("teamcal exiting", "code", code)
	appLog.Sync()
	os.Exit(code)
}

func newApp(conf *config.Config, debug bool) (*app, error) {
	loc, err := conf.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "timezone", conf.Timezone)
	}

	st, err := store.Open(conf.DataPath)
	if err != nil {
		return nil, err
	}

	cacheDir := filepath.Join(filepath.Dir(conf.DataPath), "ics-cache")
	if debug {
		cacheDir = "./cache/ics-cache"
	}
	fetcher := ics.NewFetcher(cacheDir, 30*time.Second)

	return &app{
		conf:      conf,
		loc:       loc,
		store:     st,
		refresher: feeds.NewRefresher(conf, fetcher, st, loc),
	}, nil
}

func (a *app) httpServer() *http.Server {
	srv := web.NewServer(a.conf, a.store, a.refresher, a.loc)
	return &http.Server{
		Addr:              a.conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// runOnce imports the ICS subscriptions and exits.
func (a *app) runOnce() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.refresher.Refresh(ctx); err != nil {
		appLog.Error("feed refresh failed", err)
		return 1
	}
	return 0
}

// runSnapshot serves the UI just long enough to capture the calendar page.
func (a *app) runSnapshot() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := a.httpServer()
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			stop()
		}
	}()

	err := capture.SnapshotPNG(ctx, capture.OptionsFor(a.conf))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := errors.Join(err, httpSrv.Shutdown(shutdownCtx)); err != nil {
		appLog.Error("snapshot failed", err)
		return 1
	}
	return 0
}

// serve runs the HTTP server and the refresh schedule until a shutdown
// signal arrives.
func (a *app) serve() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpSrv := a.httpServer()
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+a.conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			appLog.Sync()
			os.Exit(1)
		}
	}()

	go func() {
		if _, err := a.refresher.Refresh(ctx); err != nil {
			appLog.Error("initial feed refresh failed", err)
		}
	}()
	scheduler, err := feeds.Schedule(ctx, a.conf.RefreshCron, a.loc, a.refresher)
	if err != nil {
		appLog.Error("failed to start refresh schedule", err)
		return 1
	}

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				appLog.Info("shutting down HTTP server")
				return httpSrv.Shutdown(ctx)
			},
			"scheduler": func(ctx context.Context) error {
				cancel()
				select {
				case <-scheduler.Stop().Done():
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
		},
	)
	return <-wait
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/teamcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Import the ICS subscriptions once and exit")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Serve the UI, write a PNG of the calendar page to snapshot_path and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and a local ./cache for ICS downloads")

	flag.Parse()

	return cfg
}
