package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/logger"
)

type Clock func() time.Time

// Syncer delivers stored records to the remote endpoint and tracks status.
type Syncer struct {
	Store  Store
	Poster Poster
	Now    Clock
	Log    *logger.Logger
}

func NewSyncer(store Store, poster Poster, now Clock, log *logger.Logger) *Syncer {
	if now == nil {
		now = time.Now
	}
	return &Syncer{Store: store, Poster: poster, Now: now, Log: logger.OrNop(log)}
}

func (s *Syncer) Sync(ctx context.Context, id string) error {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == StatusOK {
		return nil
	}
	_ = s.Store.MarkPending(ctx, rec.ID)

	if _, err := s.Poster.Post(ctx, rec.Payload); err != nil {
		if merr := s.Store.MarkFailed(ctx, rec.ID, err.Error()); merr != nil {
			s.Log.Error("mark submission failed", "id", rec.ID, "error", merr)
		}
		s.Log.Warn("submission delivery failed", "id", rec.ID, "student", rec.StudentID, "retries", rec.Retries+1, "error", err)
		return fmt.Errorf("deliver submission %s: %w", rec.ID, err)
	}
	if err := s.Store.MarkOK(ctx, rec.ID); err != nil {
		return err
	}
	s.Log.Info("submission delivered", "id", rec.ID, "student", rec.StudentID, "score", rec.Payload.Score)
	return nil
}

// RetryFailed re-sends failed records with fewer than maxRetries attempts, and
// pending records untouched for staleAfter (a crash between store and send).
func (s *Syncer) RetryFailed(ctx context.Context, maxRetries int, staleAfter time.Duration) (delivered, failed int, err error) {
	candidates, err := s.Store.List(ctx, ListOpts{Status: StatusFailed})
	if err != nil {
		return 0, 0, err
	}
	pending, err := s.Store.List(ctx, ListOpts{Status: StatusPending})
	if err != nil {
		return 0, 0, err
	}
	cutoff := s.Now().Add(-staleAfter)
	for _, p := range pending {
		if p.UpdatedAt.Before(cutoff) {
			candidates = append(candidates, p)
		}
	}

	var errs []error
	for _, rec := range candidates {
		if maxRetries > 0 && rec.Retries >= maxRetries {
			continue
		}
		if ctx.Err() != nil {
			return delivered, failed, ctx.Err()
		}
		if e := s.Sync(ctx, rec.ID); e != nil {
			failed++
			errs = append(errs, e)
			continue
		}
		delivered++
	}
	return delivered, failed, errors.Join(errs...)
}
