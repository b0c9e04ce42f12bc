package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/roster"
)

// GET /quiz
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := svc.Content()
		writeJSON(w, http.StatusOK, map[string]any{
			"title":              c.Title,
			"questions_per_page": c.Paging.PerPageOrDefault(),
			"pages":              c.Paging.Pages(c.Bank.Len()),
			"total":              c.Bank.Len(),
			"questions":          c.Bank.Public(),
		})
	}
}

// GET /roster
func ListRosterHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		students := svc.Content().Roster.Students()
		if students == nil {
			students = []roster.Student{}
		}
		writeJSON(w, http.StatusOK, students)
	}
}

// GET /roster/{code}
func LookupStudentHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		name, err := svc.Content().Roster.Lookup(code)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roster.Student{Code: code, Name: name})
	}
}

// POST /bank/lint parses the request body as a question bank and reports
// what would be loaded, without touching the running quiz.
func LintBankHandler(opts bank.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, fb := opts.Mode, opts.PromptFallback
		if v := r.URL.Query().Get("mode"); v != "" {
			m, err := bank.ParseMode(v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mode = m
		}
		if v := r.URL.Query().Get("prompt_fallback"); v != "" {
			f, err := bank.ParsePromptFallback(v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			fb = f
		}
		b, err := bank.ParseReader(http.MaxBytesReader(w, r.Body, 4<<20), bank.Options{Mode: mode, PromptFallback: fb})
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		warnings := b.Warnings
		if warnings == nil {
			warnings = []bank.Warning{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total":     b.Len(),
			"questions": b.Questions,
			"warnings":  warnings,
		})
	}
}

// Reloader rebuilds quiz content from its sources.
type Reloader func() (quiz.Content, error)

// POST /bank/reload
func ReloadBankHandler(svc *quiz.Service, load Reloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := load()
		if err != nil {
			http.Error(w, "reload: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		svc.Reload(r.Context(), c, auth.Actor(r.Context()))
		writeJSON(w, http.StatusOK, map[string]any{
			"title":    c.Title,
			"total":    c.Bank.Len(),
			"warnings": len(c.Bank.Warnings),
			"students": c.Roster.Len(),
		})
	}
}
