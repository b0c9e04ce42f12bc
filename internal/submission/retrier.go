package submission

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mind-engage/mindengage-quiz/internal/logger"
)

// Retrier periodically re-sends failed submissions.
type Retrier struct {
	scheduler  *gocron.Scheduler
	syncer     *Syncer
	interval   time.Duration
	maxRetries int
	log        *logger.Logger
}

func NewRetrier(syncer *Syncer, interval time.Duration, maxRetries int, log *logger.Logger) *Retrier {
	if interval <= 0 {
		interval = time.Minute
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Retrier{scheduler: s, syncer: syncer, interval: interval, maxRetries: maxRetries, log: logger.OrNop(log)}
}

// Start schedules the retry job without blocking.
func (r *Retrier) Start() error {
	if _, err := r.scheduler.Every(r.interval).WaitForSchedule().Do(r.run); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

func (r *Retrier) Stop() {
	r.scheduler.Stop()
}

func (r *Retrier) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()
	delivered, failed, err := r.syncer.RetryFailed(ctx, r.maxRetries, r.interval)
	if delivered == 0 && failed == 0 {
		return
	}
	if err != nil {
		r.log.Warn("submission retry pass", "delivered", delivered, "failed", failed, "error", err)
		return
	}
	r.log.Info("submission retry pass", "delivered", delivered)
}
