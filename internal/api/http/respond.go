package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/guard"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/roster"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var inc *quiz.IncompleteError
	switch {
	case errors.As(err, &inc):
		writeJSON(w, http.StatusPreconditionFailed, map[string]any{
			"error":    inc.Error(),
			"answered": inc.Answered,
			"total":    inc.Total,
		})
	case errors.Is(err, quiz.ErrSessionNotFound), errors.Is(err, submission.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, roster.ErrUnknownStudent):
		http.Error(w, "Name Not Found", http.StatusNotFound)
	case errors.Is(err, quiz.ErrAlreadySubmitted), errors.Is(err, guard.ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, grading.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, quiz.ErrEmptyBank):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, submission.ErrRemoteRejected):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return def
}
