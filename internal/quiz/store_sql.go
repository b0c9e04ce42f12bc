package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sql.DB, driverName string) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(db, driverName)}
}

type sessionRow struct {
	ID          string        `db:"id"`
	StudentID   string        `db:"student_id"`
	DeviceID    string        `db:"device_id"`
	Status      string        `db:"status"`
	Page        int           `db:"page"`
	AnswersJSON string        `db:"answers_json"`
	StartedAt   int64         `db:"started_at"`
	SubmittedAt sql.NullInt64 `db:"submitted_at"`
}

func (r sessionRow) session() (Session, error) {
	s := Session{
		ID:        r.ID,
		StudentID: r.StudentID,
		DeviceID:  r.DeviceID,
		Status:    Status(r.Status),
		Page:      r.Page,
		StartedAt: time.Unix(r.StartedAt, 0),
		Answers:   grading.AnswerSet{},
	}
	if r.AnswersJSON != "" {
		if err := json.Unmarshal([]byte(r.AnswersJSON), &s.Answers); err != nil {
			return Session{}, fmt.Errorf("session %s answers: %w", r.ID, err)
		}
	}
	if r.SubmittedAt.Valid {
		at := time.Unix(r.SubmittedAt.Int64, 0)
		s.SubmittedAt = &at
	}
	return s, nil
}

const sessionCols = `id,student_id,device_id,status,page,answers_json,started_at,submitted_at`

func encodeAnswers(a grading.AnswerSet) (string, error) {
	if a == nil {
		a = grading.AnswerSet{}
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (s *SQLStore) CreateSession(ctx context.Context, sess Session) error {
	aj, err := encodeAnswers(sess.Answers)
	if err != nil {
		return err
	}
	if sess.Status == "" {
		sess.Status = StatusInProgress
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (id,student_id,device_id,status,page,answers_json,started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sess.ID, sess.StudentID, sess.DeviceID, string(sess.Status), sess.Page, aj, sess.StartedAt.Unix())
	return err
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	var row sessionRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+sessionCols+` FROM sessions WHERE id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return row.session()
}

// notUpdated resolves a zero-row UPDATE into not-found or already-submitted.
func (s *SQLStore) notUpdated(ctx context.Context, id string) error {
	var status string
	err := s.db.GetContext(ctx, &status, `SELECT status FROM sessions WHERE id=$1`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrSessionNotFound
	case err != nil:
		return err
	case Status(status) == StatusSubmitted:
		return ErrAlreadySubmitted
	}
	return fmt.Errorf("session %s: update affected no rows", id)
}

func (s *SQLStore) guardedUpdate(ctx context.Context, id, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return s.notUpdated(ctx, id)
	}
	return nil
}

func (s *SQLStore) SaveSession(ctx context.Context, sess Session) error {
	aj, err := encodeAnswers(sess.Answers)
	if err != nil {
		return err
	}
	return s.guardedUpdate(ctx, sess.ID,
		`UPDATE sessions SET page=$1, answers_json=$2 WHERE id=$3 AND status='in_progress'`,
		sess.Page, aj, sess.ID)
}

func (s *SQLStore) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	return s.guardedUpdate(ctx, id,
		`UPDATE sessions SET status='submitted', submitted_at=$1 WHERE id=$2 AND status='in_progress'`,
		at.Unix(), id)
}

func (s *SQLStore) Reopen(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status='in_progress', submitted_at=NULL WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLStore) ListSessions(ctx context.Context, opts ListOpts) ([]Session, error) {
	var (
		where []string
		args  []any
	)
	if opts.StudentID != "" {
		args = append(args, opts.StudentID)
		where = append(where, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	q := `SELECT ` + sessionCols + ` FROM sessions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at, id"
	opts.Offset = max(opts.Offset, 0)
	if opts.Limit > 0 {
		args = append(args, opts.Limit, opts.Offset)
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	// sqlite and postgres disagree on OFFSET without LIMIT
	if opts.Limit <= 0 && opts.Offset > 0 {
		rows = rows[min(opts.Offset, len(rows)):]
	}
	out := make([]Session, 0, len(rows))
	for _, r := range rows {
		sess, err := r.session()
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}
