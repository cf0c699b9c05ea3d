// Package api serves the quiz tutor over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/quiztutor/internal/auth"
	"github.com/abhisek/quiztutor/internal/metrics"
	"github.com/abhisek/quiztutor/internal/store"
	"github.com/abhisek/quiztutor/internal/tutor"
)

// Options configures the router.
type Options struct {
	Tutor       *tutor.Service
	Accounts    *auth.Accounts
	Tokens      *auth.TokenService
	Metrics     *metrics.Metrics
	CORSOrigins []string
	// RequestTimeout bounds each request. Zero disables the timeout.
	RequestTimeout time.Duration
}

type server struct {
	tutor    *tutor.Service
	accounts *auth.Accounts
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	s := &server{tutor: opts.Tutor, accounts: opts.Accounts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/register", s.handleRegister)
		ar.Post("/login", s.handleLogin)
		ar.Get("/topics", s.handleTopics)
		ar.Get("/question", s.handleQuestion)
		ar.Post("/submit", s.handleSubmit)
		ar.Get("/stats", s.handleStats)

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(opts.Tokens, unauthorized))
			pr.Use(auth.RequireRole(store.RoleTeacher, forbidden))
			pr.Get("/admin/dashboard", s.handleDashboard)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", opts.Metrics.Handler())

	return r
}
