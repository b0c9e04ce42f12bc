package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type SQLStore struct {
	db  *sqlx.DB
	now Clock
}

// NewSQLStore wraps an open handle; driverName is the database/sql driver ("sqlite" or "pgx").
func NewSQLStore(db *sql.DB, driverName string) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(db, driverName), now: time.Now}
}

type recordRow struct {
	ID          string `db:"id"`
	SessionID   string `db:"session_id"`
	StudentID   string `db:"student_id"`
	DeviceID    string `db:"device_id"`
	PayloadJSON string `db:"payload_json"`
	Status      string `db:"status"`
	Retries     int    `db:"retries"`
	LastError   string `db:"last_error"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r recordRow) record() (Record, error) {
	out := Record{
		ID:        r.ID,
		SessionID: r.SessionID,
		StudentID: r.StudentID,
		DeviceID:  r.DeviceID,
		Status:    Status(r.Status),
		Retries:   r.Retries,
		LastError: r.LastError,
		CreatedAt: time.Unix(r.CreatedAt, 0),
		UpdatedAt: time.Unix(r.UpdatedAt, 0),
	}
	if err := json.Unmarshal([]byte(r.PayloadJSON), &out.Payload); err != nil {
		return Record{}, fmt.Errorf("submission %s payload: %w", r.ID, err)
	}
	return out, nil
}

const recordCols = `id,session_id,student_id,device_id,payload_json,status,retries,last_error,created_at,updated_at`

func (s *SQLStore) Create(ctx context.Context, r Record) error {
	pj, err := json.Marshal(r.Payload)
	if err != nil {
		return err
	}
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (`+recordCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, r.SessionID, r.StudentID, r.DeviceID, string(pj), string(r.Status), r.Retries, r.LastError,
		r.CreatedAt.Unix(), now.Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	var row recordRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+recordCols+` FROM submissions WHERE id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return row.record()
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if opts.StudentID != "" {
		args = append(args, opts.StudentID)
		where = append(where, fmt.Sprintf("student_id=$%d", len(args)))
	}
	q := `SELECT ` + recordCols + ` FROM submissions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"
	opts.Offset = max(opts.Offset, 0)
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, opts.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	// sqlite and postgres disagree on OFFSET without LIMIT
	if opts.Limit <= 0 && opts.Offset > 0 {
		rows = rows[min(opts.Offset, len(rows)):]
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQLStore) exec(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) MarkPending(ctx context.Context, id string) error {
	return s.exec(ctx, `UPDATE submissions SET status='pending', updated_at=$1 WHERE id=$2`, s.now().Unix(), id)
}

func (s *SQLStore) MarkOK(ctx context.Context, id string) error {
	return s.exec(ctx, `UPDATE submissions SET status='ok', last_error='', updated_at=$1 WHERE id=$2`, s.now().Unix(), id)
}

func (s *SQLStore) MarkFailed(ctx context.Context, id, lastErr string) error {
	return s.exec(ctx, `UPDATE submissions SET status='failed', last_error=$1, retries=retries+1, updated_at=$2 WHERE id=$3`,
		lastErr, s.now().Unix(), id)
}
