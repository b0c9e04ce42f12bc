package guard

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLLocker stores locks in the submission_locks table.
type SQLLocker struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLLocker(db *sql.DB) *SQLLocker {
	return &SQLLocker{db: db, now: time.Now}
}

func (s *SQLLocker) Check(ctx context.Context, studentID, deviceID string) error {
	for _, k := range keys(studentID, deviceID) {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM submission_locks WHERE kind=$1 AND lock_key=$2`, string(k.kind), k.key).Scan(&one)
		switch {
		case err == nil:
			return ErrAlreadySubmitted
		case errors.Is(err, sql.ErrNoRows):
			continue
		default:
			return err
		}
	}
	return nil
}

// Acquire inserts every lock row in one transaction. A row that already
// exists inserts nothing and rolls the whole acquisition back.
func (s *SQLLocker) Acquire(ctx context.Context, studentID, deviceID string) error {
	ks := keys(studentID, deviceID)
	if len(ks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := s.now().Unix()
	for _, k := range ks {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO submission_locks (kind, lock_key, created_at) VALUES ($1,$2,$3)
			 ON CONFLICT (kind, lock_key) DO NOTHING`, string(k.kind), k.key, now)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrAlreadySubmitted
		}
	}
	return tx.Commit()
}

func (s *SQLLocker) Release(ctx context.Context, studentID, deviceID string) error {
	for _, k := range keys(studentID, deviceID) {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM submission_locks WHERE kind=$1 AND lock_key=$2`, string(k.kind), k.key); err != nil {
			return err
		}
	}
	return nil
}
