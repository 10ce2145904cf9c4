package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/trends"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Engine
	trends   *trends.Engine
	db       *storage.DB
	log      *slog.Logger
	apiKey   string
	whois    WhoIsClient
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(sessions *session.Engine, trendsEngine *trends.Engine, db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		trends:   trendsEngine,
		db:       db,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution from the dev user to tailnet
// WhoIs lookups. Must be called before serving.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/active", s.handleActiveSession)
			r.Get("/recent", s.handleRecentWorkouts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/pause", s.handlePauseSession)
				r.Post("/resume", s.handleResumeSession)
				r.Post("/abandon", s.handleAbandonSession)
				r.Post("/finish", s.handleFinishSession)
				r.Patch("/sets/{setID}", s.handleUpdateSet)
				r.Post("/sets/{setID}/complete", s.handleCompleteSet)
			})
		})

		r.Route("/trends", func(r chi.Router) {
			r.Get("/workouts", s.handleWorkoutsTrend)
			r.Get("/exercise", s.handleExerciseTrend)
			r.Get("/muscle-group", s.handleMuscleGroupTrend)
		})
	})

	// Sync endpoints for the offline logbook CLI (API key required).
	s.router.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identity)
		r.Post("/sets", s.handleSyncSets)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
