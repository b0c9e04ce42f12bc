package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/export"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

func submissionOpts(r *http.Request) submission.ListOpts {
	q := r.URL.Query()
	return submission.ListOpts{
		Status:    submission.Status(q.Get("status")),
		StudentID: q.Get("student_id"),
		Limit:     parseIntDefault(q.Get("limit"), 0),
		Offset:    parseIntDefault(q.Get("offset"), 0),
	}
}

// GET /submissions?status=&student_id=&limit=&offset=
func ListSubmissionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.Submissions().List(r.Context(), submissionOpts(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// GET /submissions/export.xlsx streams the workbook and, when blobs is set,
// keeps a copy under exports/.
func ExportSubmissionsHandler(svc *quiz.Service, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.Submissions().List(r.Context(), submissionOpts(r))
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteSubmissionsXLSX(&buf, recs); err != nil {
			http.Error(w, "export: "+err.Error(), http.StatusInternalServerError)
			return
		}
		name := fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		if blobs != nil {
			if key, err := blobs.Put("exports/"+name, bytes.NewReader(buf.Bytes())); err == nil {
				w.Header().Set("X-Export-Key", key)
			}
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		_, _ = w.Write(buf.Bytes())
	}
}

// POST /submissions/{id}/retry
func RetrySubmissionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.Retry(r.Context(), id, auth.Actor(r.Context())); err != nil {
			writeError(w, err)
			return
		}
		rec, err := svc.Submissions().Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// GET /sessions?student_id=&status=&limit=&offset=
func ListSessionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ss, err := svc.Sessions().ListSessions(r.Context(), quiz.ListOpts{
			StudentID: q.Get("student_id"),
			Status:    quiz.Status(q.Get("status")),
			Limit:     parseIntDefault(q.Get("limit"), 0),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ss)
	}
}

// DELETE /locks  {"student_id": "...", "device_id": "..."}
func ReleaseLockHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string `json:"student_id"`
			DeviceID  string `json:"device_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.StudentID == "" && req.DeviceID == "" {
			http.Error(w, "student_id or device_id required", http.StatusBadRequest)
			return
		}
		if err := svc.ReleaseLock(r.Context(), req.StudentID, req.DeviceID, auth.Actor(r.Context())); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// EventSource reads the append-only event log.
type EventSource interface {
	Since(ctx context.Context, seq int64, limit int) ([]syncx.Event, error)
}

// GET /events?since=&limit=
func ListEventsHandler(src EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		evs, err := src.Since(r.Context(), int64(parseIntDefault(q.Get("since"), 0)), parseIntDefault(q.Get("limit"), 100))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evs)
	}
}
