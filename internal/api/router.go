package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voiceagent/internal/api/handlers"
	"github.com/nikhilbhutani/voiceagent/internal/api/middleware"
	"github.com/nikhilbhutani/voiceagent/internal/config"
	"github.com/nikhilbhutani/voiceagent/internal/runlog"
	"github.com/nikhilbhutani/voiceagent/internal/web"
)

// Router owns the chi mux and the dependencies its handlers need.
type Router struct {
	mux   *chi.Mux
	cfg   *config.Config
	proc  handlers.Processor
	page  *web.Page
	db    *pgxpool.Pool
	redis *redis.Client
}

// NewRouter wires the HTTP surface. db and rdb may be nil when Postgres or
// Redis are not configured.
func NewRouter(cfg *config.Config, proc handlers.Processor, db *pgxpool.Pool, rdb *redis.Client) (*Router, error) {
	page, err := web.NewPage(cfg.Audio)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	return &Router{
		mux:   chi.NewRouter(),
		cfg:   cfg,
		proc:  proc,
		page:  page,
		db:    db,
		redis: rdb,
	}, nil
}

// Setup registers middleware and routes and returns the root handler.
func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	voice := handlers.NewVoiceHandler(rt.proc, rt.page, rt.cfg.Audio)
	r.Get("/", voice.Index)
	r.Get("/config", voice.Config)
	r.Post("/process_audio", voice.ProcessAudio)

	if rt.db != nil {
		runs := handlers.NewRunsHandler(runlog.NewStore(rt.db))
		r.Get("/runs", runs.List)
	}

	return r
}
