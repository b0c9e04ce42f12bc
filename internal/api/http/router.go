package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

type RouterDeps struct {
	Service     *quiz.Service
	Auth        *auth.AuthService
	Operators   []auth.Operator
	BankOptions bank.Options
	Reload      Reloader    // nil disables /bank/reload
	Blobs       storage.BlobStore
	Events      EventSource // nil disables /events
	CORSOrigins []string
	Ready       func() error
	Log         *logger.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	svc := d.Service

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Device-ID"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "X-Export-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Student flow, identified by roster code only.
	r.Get("/quiz", GetQuizHandler(svc))
	r.Get("/roster", ListRosterHandler(svc))
	r.Get("/roster/{code}", LookupStudentHandler(svc))
	r.Post("/sessions", StartSessionHandler(svc))
	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", GetSessionHandler(svc))
		sr.Put("/answers", SaveAnswersHandler(svc))
		sr.Post("/navigate", NavigateHandler(svc))
		sr.Get("/status", SessionStatusHandler(svc))
		sr.Post("/submit", SubmitSessionHandler(svc))
	})

	if d.Auth != nil {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Operators...))

		// Operator API (JWT → role in context → RBAC)
		r.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))

			pr.With(rbac.Require(rbac.PermSubmissionsList)).
				Get("/submissions", ListSubmissionsHandler(svc))
			pr.With(rbac.Require(rbac.PermSubmissionsExport)).
				Get("/submissions/export.xlsx", ExportSubmissionsHandler(svc, d.Blobs))
			pr.With(rbac.Require(rbac.PermSubmissionsRetry)).
				Post("/submissions/{id}/retry", RetrySubmissionHandler(svc))
			pr.With(rbac.Require(rbac.PermSessionsList)).
				Get("/sessions", ListSessionsHandler(svc))
			pr.With(rbac.Require(rbac.PermLocksRelease)).
				Delete("/locks", ReleaseLockHandler(svc))
			pr.With(rbac.RequireAny(rbac.PermBankLint, rbac.PermBankReload)).
				Post("/bank/lint", LintBankHandler(d.BankOptions))
			if d.Reload != nil {
				pr.With(rbac.Require(rbac.PermBankReload)).
					Post("/bank/reload", ReloadBankHandler(svc, d.Reload))
			}
			if d.Events != nil {
				pr.With(rbac.Require(rbac.PermEventsRead)).
					Get("/events", ListEventsHandler(d.Events))
			}
			if d.Blobs != nil {
				pr.With(rbac.Require(rbac.PermSubmissionsExport)).
					Route("/exports", func(er chi.Router) { MountExports(er, d.Blobs) })
			}
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		if svc.Content().Bank.Empty() {
			http.Error(w, quiz.ErrEmptyBank.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
