// Package api wires the HTTP handlers onto a chi router.
package api

import (
	"net/http"

	"github.com/dvloznov/spendwise/internal/api/handlers"
	"github.com/dvloznov/spendwise/internal/api/middleware"
	"github.com/dvloznov/spendwise/internal/categorizer"
	"github.com/dvloznov/spendwise/internal/jobs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Analyzer       handlers.Analyzer
	Strategy       categorizer.Strategy
	Store          jobs.JobStore
	Publisher      jobs.Publisher
	MaxUploadBytes int64
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(cfg RouterConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Log))
	r.Use(middleware.RequestID(cfg.Log))
	r.Use(middleware.Logger(cfg.Log))
	r.Use(middleware.CORS(origins))

	health := handlers.NewHealthHandler(cfg.Strategy)
	r.Get("/health", health.Health)

	analyze := handlers.NewAnalyzeHandler(cfg.Analyzer, cfg.MaxUploadBytes)
	cats := handlers.NewCategoriesHandler()

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", analyze.Analyze)
		r.Get("/categories", cats.ListCategories)

		if cfg.Store != nil && cfg.Publisher != nil {
			jh := handlers.NewJobsHandler(cfg.Store, cfg.Publisher)
			r.Route("/jobs", func(r chi.Router) {
				r.Post("/", jh.CreateJob)
				r.Get("/", jh.ListJobs)
				r.Get("/{id}", jh.GetJob)
			})
		}
	})

	return r
}
