package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/app"
	"github.com/ayusman/pinchpoint/internal/capture"
	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/hook"
	"github.com/ayusman/pinchpoint/internal/logging"
	"github.com/ayusman/pinchpoint/internal/server"
	"github.com/ayusman/pinchpoint/internal/store"
)

const dataDirName = ".pinchpoint"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pinchpoint:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	log.WithField("path", st.Path()).Info("store opened")

	hub := server.NewEventHub(log)
	preview := &capture.Preview{}

	var notifier app.Notifier
	if cfg.Hooks.Dir != "" {
		hooks := hook.NewManager(cfg.Hooks.Dir, log)
		if err := hooks.Discover(); err != nil {
			return fmt.Errorf("discover hooks: %w", err)
		}
		runner := hook.NewRunner(hooks, cfg.Hooks.Timeout, log)
		defer runner.Close()
		notifier = runner
		log.WithField("count", len(hooks.List())).Info("activation hooks loaded")
	}

	application, err := app.New(app.Config{
		Config:    cfg,
		Store:     st,
		Publisher: hub,
		Notifier:  notifier,
		Preview:   preview,
		Log:       log,
	})
	if err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	defer application.Stop()

	webDir := findWebDir()
	if webDir != "" {
		log.WithField("dir", webDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Hub:       hub,
		Tracking:  application,
		Preview:   preview,
		Log:       log,
	})
	httpSrv := srv.HTTPServer(cfg.Server.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	return shutdown(httpSrv, hub, log)
}

func shutdown(httpSrv *http.Server, hub *server.EventHub, log logrus.FieldLogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server shutdown")
		return err
	}
	return nil
}

// loadConfig places the database under ~/.pinchpoint unless PINCHPOINT_DB says
// otherwise.
func loadConfig() (config.Config, error) {
	base := config.Default()
	if home, err := os.UserHomeDir(); err == nil {
		base.Store.Path = filepath.Join(home, dataDirName, "pinchpoint.db")
	}

	cfg, err := config.FromEnv(base)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.pinchpoint/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, dataDirName, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
