package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voiceagent/internal/api"
	"github.com/nikhilbhutani/voiceagent/internal/cache"
	"github.com/nikhilbhutani/voiceagent/internal/config"
	"github.com/nikhilbhutani/voiceagent/internal/database"
	"github.com/nikhilbhutani/voiceagent/internal/generation"
	"github.com/nikhilbhutani/voiceagent/internal/multimodal/stt"
	"github.com/nikhilbhutani/voiceagent/internal/multimodal/tts"
	"github.com/nikhilbhutani/voiceagent/internal/pipeline"
	"github.com/nikhilbhutani/voiceagent/internal/queue"
	"github.com/nikhilbhutani/voiceagent/internal/runlog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Server.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database connection (optional; only the run log uses it)
	var db *pgxpool.Pool
	if cfg.Database.URL != "" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without DB", "error", err)
		} else {
			defer db.Close()
			if err := database.RunMigrations(ctx, db, database.MigrationsFS(cfg.Database.MigrationsPath)); err != nil {
				slog.Warn("migrations failed", "error", err)
			}
		}
	}

	// Redis connection (optional; synthesis cache and run log queue)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable", "error", err)
		}
		defer rdb.Close()
	}

	audioCache, err := cache.New(cfg.Cache, rdb)
	if err != nil {
		slog.Error("failed to set up synthesis cache", "error", err)
		os.Exit(1)
	}

	transcriber, err := stt.New(cfg.STT, cfg.Server.UpstreamTimeout)
	if err != nil {
		slog.Error("failed to set up transcription", "error", err)
		os.Exit(1)
	}
	generator, err := generation.New(cfg.Generation, cfg.Server.UpstreamTimeout)
	if err != nil {
		slog.Error("failed to set up generation", "error", err)
		os.Exit(1)
	}
	synthesizer := tts.New(cfg.TTS, audioCache, cfg.Server.UpstreamTimeout)

	recorder := runlog.Nop()
	switch cfg.RunLog.Backend {
	case "postgres":
		if db != nil {
			recorder = runlog.NewStore(db)
		} else {
			slog.Warn("run log disabled: database unavailable")
		}
	case "queue":
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		recorder = qc
	}

	p := pipeline.New(transcriber, generator, synthesizer,
		pipeline.WithRecorder(recorder),
		pipeline.WithStageTimeout(cfg.Server.UpstreamTimeout),
	)

	router, err := api.NewRouter(cfg, p, db, rdb)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}
	handler := router.Setup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		// Three sequential upstream calls plus upload and response.
		WriteTimeout: 3*cfg.Server.UpstreamTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting voice agent",
			"addr", cfg.Addr(),
			"debug", cfg.Server.Debug,
			"stt", transcriber.Name(),
			"generation", generator.Name(),
			"tts", synthesizer.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
