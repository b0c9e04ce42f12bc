package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// POST /sessions  {"student_id": "...", "device_id": "..."}
func StartSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string `json:"student_id"`
			DeviceID  string `json:"device_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.StudentID) == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}
		if req.DeviceID == "" {
			req.DeviceID = r.Header.Get("X-Device-ID")
		}
		s, err := svc.Start(r.Context(), req.StudentID, req.DeviceID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

// GET /sessions/{sessionID}
func GetSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Sessions().GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// PUT /sessions/{sessionID}/answers  {"page": 0, "answers": {"1": [2], "3": []}}
func SaveAnswersHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Page    int               `json:"page"`
			Answers grading.AnswerSet `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		s, err := svc.SaveAnswers(r.Context(), chi.URLParam(r, "sessionID"), req.Page, req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// POST /sessions/{sessionID}/navigate  {"delta": 1, "answers": {...}}
// When answers are present the current page is saved first.
func NavigateHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		var req struct {
			Delta   int               `json:"delta"`
			Answers grading.AnswerSet `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Answers != nil {
			cur, err := svc.Sessions().GetSession(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			if _, err := svc.SaveAnswers(r.Context(), id, cur.Page, req.Answers); err != nil {
				writeError(w, err)
				return
			}
		}
		if _, err := svc.Navigate(r.Context(), id, req.Delta); err != nil {
			writeError(w, err)
			return
		}
		pv, err := svc.Preview(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pv)
	}
}

// GET /sessions/{sessionID}/status
func SessionStatusHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pv, err := svc.Preview(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pv)
	}
}

// POST /sessions/{sessionID}/submit  {"student_name": "...", "confirm_incomplete": false}
func SubmitSessionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentName       string `json:"student_name"`
			ConfirmIncomplete bool   `json:"confirm_incomplete"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		rc, err := svc.Submit(r.Context(), chi.URLParam(r, "sessionID"), req.StudentName, req.ConfirmIncomplete)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rc)
	}
}
