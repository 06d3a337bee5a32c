package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/calendar"
	"github.com/dukerupert/movienight/internal/config"
	"github.com/dukerupert/movienight/internal/database"
	"github.com/dukerupert/movienight/internal/handler"
	"github.com/dukerupert/movienight/internal/logging"
	"github.com/dukerupert/movienight/internal/moviesearch"
	"github.com/dukerupert/movienight/internal/secret"
	"github.com/dukerupert/movienight/internal/server"
	"github.com/dukerupert/movienight/internal/store"
	"github.com/dukerupert/movienight/internal/tmdb"
)

func main() {
	cfg, err := config.Load(os.Getenv("MOVIENIGHT_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if v, err := database.SchemaVersion(context.Background(), db); err == nil {
		logger.Info("database ready", "path", cfg.DBPath, "schema_version", v)
	}

	// Seal the stored token only when a key is configured
	var sealer store.Sealer
	if cfg.SessionKey != "" {
		box, err := secret.NewBox(cfg.SessionKey)
		if err != nil {
			logger.Error("failed to set up session sealing", "error", err)
			os.Exit(1)
		}
		sealer = box
	}

	sessions := auth.NewManager(store.NewSessionStore(db, sealer), logger.With("component", "session"))
	if err := sessions.Hydrate(); err != nil {
		logger.Warn("could not restore session", "error", err)
	}

	client := api.NewClient(cfg.APIBaseURL, sessions,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.With("component", "api")),
	)

	var lookup moviesearch.Lookup
	movies := tmdb.NewClient(cfg.TMDBAPIKey,
		tmdb.WithBaseURL(cfg.TMDBBaseURL),
		tmdb.WithImageBaseURL(cfg.TMDBImageBaseURL),
	)
	if movies.Configured() {
		lookup = movies
	} else {
		logger.Info("no TMDB API key configured, movie search disabled")
	}

	weekStart, err := calendar.ParseWeekStart(cfg.WeekStart)
	if err != nil {
		logger.Error("invalid week start", "error", err)
		os.Exit(1)
	}
	prefs := handler.NewPreferences(store.NewPreferenceStore(db), weekStart, cfg.Location(), logger.With("component", "preferences"))

	srv := server.New(client, lookup, sessions, prefs, logger)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("movienight starting", "addr", cfg.Listen, "api", cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
