package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
	"github.com/meltforce/myplan/internal/storage"
)

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Store is the persistence the server needs: the plan backend, user profiles
// and the tailnet user mapping. Satisfied by *storage.DB.
type Store interface {
	myplan.Backend
	myplan.ProfileLoader
	UserStore
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetPlanStats(ctx context.Context, userID int) (*storage.PlanStats, error)
	ListWorkouts(ctx context.Context) ([]models.WorkoutDetail, error)
	SetQuizCompleted(ctx context.Context, userID int, done bool) error
	Ping(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	sessions *myplan.Registry
	log      *slog.Logger
	apiKey   string
	router   chi.Router
	mcp      http.Handler
	whois    WhoIsClient
}

// New creates a new Server with all routes configured.
func New(store Store, sessions *myplan.Registry, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		sessions: sessions,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches request identity from the dev user to tailnet WhoIs
// lookups. Call before serving.
func (s *Server) SetTailscale(whois WhoIsClient) {
	s.whois = whois
}

// SetMCP mounts an MCP handler at /mcp. Requests reach it with the caller's
// identity resolved.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.store)(next).ServeHTTP(w, r)
	})
}

// tailnetOrKey lets requests through when identity comes from the tailnet and
// otherwise requires the API key, so the dev listener does not accept plan
// writes from anyone who can reach it.
func (s *Server) tailnetOrKey(next http.Handler) http.Handler {
	keyed := APIKeyAuth(s.apiKey)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			keyed.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	s.router.Get("/api/v1/health", s.handleHealth)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Post("/api/v1/me/quiz", s.handleQuiz)
	s.router.Get("/api/v1/imports", s.handleImportLogs)
	s.router.Get("/api/v1/stats", s.handleStats)

	// Plan backend (reads open, writes need the API key)
	s.router.Get("/api/v1/plan", s.handleGetPlan)
	s.router.Get("/api/v1/progress", s.handleGetProgress)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/plans/{id}/type", s.handleGetPlanType)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/plan/date", s.handleChangeDate)
		r.Post("/api/v1/plan/difficulty", s.handleChangeDifficulty)
		r.Post("/api/v1/progress", s.handleSaveProgress)
		r.Post("/api/v1/workouts/rate", s.handleRateWorkout)
	})

	// Plan screen. Navigation is open; actions that write to the plan need
	// the API key unless the caller is identified by the tailnet.
	s.router.Route("/api/v1/myplan", func(r chi.Router) {
		r.Get("/", s.handleScreen)
		r.Post("/reload", s.handleScreenReload)
		r.Post("/select", s.handleScreenSelect)
		r.Post("/variant", s.handleScreenVariant)
		r.Post("/complete", s.handleScreenComplete)
		r.Post("/play", s.handleScreenPlay)
		r.Group(func(r chi.Router) {
			r.Use(s.tailnetOrKey)
			r.Post("/change-date", s.handleScreenChangeDate)
			r.Post("/progress", s.handleScreenProgress)
			r.Post("/rate", s.handleScreenRate)
			r.Post("/difficulty", s.handleScreenDifficulty)
		})
	})

	// MCP tools can rate workouts, so they follow the same rule.
	s.router.With(s.tailnetOrKey).Handle("/mcp", http.HandlerFunc(s.handleMCP))
}
