package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/syllabook/internal/config"
	"github.com/dgallion1/syllabook/internal/generate"
	"github.com/dgallion1/syllabook/internal/pipeline"
)

// Server is the HTTP API server for syllabook.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *generate.OpenRouterClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. llm may be nil, in which
// case the stats endpoint reports unavailable.
func NewServer(orch *pipeline.Orchestrator, llm *generate.OpenRouterClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llm,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/books", s.handleCreateBook)
		r.Get("/api/books/{jobID}/status", s.handleBookStatus)
		r.Get("/api/books/{jobID}/document", s.handleBookDocument)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
