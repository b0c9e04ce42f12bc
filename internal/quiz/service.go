package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/guard"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/roster"
	"github.com/mind-engage/mindengage-quiz/internal/submission"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

// Events is the append side of the event log.
type Events interface {
	Append(ctx context.Context, typ, key string, data any) error
}

type Deps struct {
	Store       Store
	Submissions submission.Store
	Syncer      *submission.Syncer // nil disables immediate delivery
	Locker      guard.Locker
	Engine      *grading.Engine
	Events      Events
	Log         *logger.Logger
	Now         func() time.Time
	NewID       func() string
}

// Content is the loaded quiz material. It is replaced as a whole on reload.
type Content struct {
	Title  string
	Bank   bank.Bank
	Roster *roster.Roster
	Paging Paging
}

type Service struct {
	mu      sync.RWMutex
	content Content

	store  Store
	subs   submission.Store
	syncer *submission.Syncer
	locker guard.Locker
	engine *grading.Engine
	events Events
	log    *logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(c Content, d Deps) *Service {
	if d.Store == nil {
		d.Store = NewMemoryStore()
	}
	if d.Submissions == nil {
		d.Submissions = submission.NewMemoryStore()
	}
	if d.Locker == nil {
		d.Locker = guard.NewMemoryLocker()
	}
	if d.Engine == nil {
		d.Engine = grading.NewEngine()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if c.Roster == nil {
		c.Roster = roster.New()
	}
	return &Service{
		content: c,
		store:   d.Store,
		subs:    d.Submissions,
		syncer:  d.Syncer,
		locker:  d.Locker,
		engine:  d.Engine,
		events:  d.Events,
		log:     logger.OrNop(d.Log),
		now:     d.Now,
		newID:   d.NewID,
	}
}

func (s *Service) Content() Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Reload swaps the bank and roster. Sessions in flight keep their answers;
// answers keyed by ordinals that no longer exist are ignored when scoring.
func (s *Service) Reload(ctx context.Context, c Content, by string) {
	if c.Roster == nil {
		c.Roster = roster.New()
	}
	s.mu.Lock()
	s.content = c
	s.mu.Unlock()
	s.emit(ctx, syncx.TypeBankReloaded, c.Title, map[string]any{
		"questions": c.Bank.Len(), "students": c.Roster.Len(), "by": by,
	})
	s.log.Info("quiz content reloaded", "title", c.Title, "questions", c.Bank.Len(),
		"warnings", len(c.Bank.Warnings), "students", c.Roster.Len(), "by", by)
}

func (s *Service) Submissions() submission.Store { return s.subs }
func (s *Service) Locker() guard.Locker           { return s.locker }
func (s *Service) Sessions() Store                { return s.store }

func (s *Service) emit(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, typ, key, data); err != nil {
		s.log.Warn("event append failed", "type", typ, "key", key, "error", err)
	}
}

// Start opens a session after checking the roster and the submission locks.
func (s *Service) Start(ctx context.Context, studentID, deviceID string) (Session, error) {
	studentID, deviceID = strings.TrimSpace(studentID), strings.TrimSpace(deviceID)
	c := s.Content()
	if c.Bank.Empty() {
		return Session{}, ErrEmptyBank
	}
	if studentID == "" {
		return Session{}, fmt.Errorf("%w: empty code", roster.ErrUnknownStudent)
	}
	if c.Roster.Len() > 0 {
		if _, err := c.Roster.Lookup(studentID); err != nil {
			return Session{}, err
		}
	}
	if err := s.locker.Check(ctx, studentID, deviceID); err != nil {
		return Session{}, err
	}

	sess := Session{
		ID:        s.newID(),
		StudentID: studentID,
		DeviceID:  deviceID,
		Answers:   grading.AnswerSet{},
		Status:    StatusInProgress,
		StartedAt: s.now(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return Session{}, err
	}
	s.emit(ctx, syncx.TypeSessionStarted, sess.ID, map[string]string{"student_id": studentID, "device_id": deviceID})
	s.log.Info("session started", "session", sess.ID, "student", studentID)
	return sess, nil
}

// SaveAnswers moves the session to page and replaces that page's answers.
func (s *Service) SaveAnswers(ctx context.Context, id string, page int, sel grading.AnswerSet) (Session, error) {
	c := s.Content()
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.Page = c.Paging.clamp(page, c.Bank.Len())
	next, err := sess.WithPageAnswers(c.Bank.Questions, c.Paging, sel)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.SaveSession(ctx, next); err != nil {
		return Session{}, err
	}
	return next, nil
}

func (s *Service) Navigate(ctx context.Context, id string, delta int) (Session, error) {
	c := s.Content()
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	next, err := sess.Navigate(delta, c.Bank.Len(), c.Paging)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.SaveSession(ctx, next); err != nil {
		return Session{}, err
	}
	return next, nil
}

// Preview is the completion status shown before submitting.
type Preview struct {
	Session    Session               `json:"session"`
	Answered   int                   `json:"answered"`
	Total      int                   `json:"total"`
	Incomplete bool                  `json:"incomplete"`
	Pages      int                   `json:"pages"`
	LastPage   bool                  `json:"last_page"`
	Questions  []bank.PublicQuestion `json:"questions"`
}

func (s *Service) Preview(ctx context.Context, id string) (Preview, error) {
	c := s.Content()
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	answered, total := grading.Completion(c.Bank.Questions, sess.Answers)
	qs := c.Paging.PageQuestions(c.Bank.Questions, sess.Page)
	pub := make([]bank.PublicQuestion, 0, len(qs))
	for _, q := range qs {
		pub = append(pub, q.Public())
	}
	return Preview{
		Session:    sess,
		Answered:   answered,
		Total:      total,
		Incomplete: answered < total,
		Pages:      c.Paging.Pages(c.Bank.Len()),
		LastPage:   sess.IsLastPage(c.Bank.Len(), c.Paging),
		Questions:  pub,
	}, nil
}

// Receipt is returned by a successful Submit.
type Receipt struct {
	SubmissionID string             `json:"submission_id"`
	Payload      submission.Payload `json:"payload"`
	Result       grading.Result     `json:"result"`
	Delivered    bool               `json:"delivered"`
}

// Submit scores the session and records the submission. Without
// confirmIncomplete an incomplete session yields *IncompleteError and nothing
// is stored. The student and device locks are taken before anything is
// persisted, so of two sessions racing for one student only one is recorded.
// Delivery failures do not fail the submit; the record stays failed and the
// retrier picks it up.
func (s *Service) Submit(ctx context.Context, id, studentName string, confirmIncomplete bool) (Receipt, error) {
	c := s.Content()
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	if sess.Status == StatusSubmitted {
		return Receipt{}, ErrAlreadySubmitted
	}
	// fail fast; Acquire below is the real gate
	if err := s.locker.Check(ctx, sess.StudentID, sess.DeviceID); err != nil {
		return Receipt{}, err
	}

	name := strings.TrimSpace(studentName)
	if n, ok := c.Roster.Name(sess.StudentID); ok {
		name = n
	}
	if name == "" {
		return Receipt{}, fmt.Errorf("%w: %q", roster.ErrUnknownStudent, sess.StudentID)
	}

	res, err := s.engine.Score(c.Bank.Questions, sess.Answers)
	if err != nil {
		return Receipt{}, err
	}
	if res.Incomplete() && !confirmIncomplete {
		return Receipt{}, &IncompleteError{Answered: res.Answered, Total: res.Scoreable}
	}

	if err := s.locker.Acquire(ctx, sess.StudentID, sess.DeviceID); err != nil {
		return Receipt{}, err
	}
	now := s.now()
	if err := s.store.MarkSubmitted(ctx, sess.ID, now); err != nil {
		s.releaseAfterFailure(ctx, sess)
		return Receipt{}, err
	}
	rec := submission.Record{
		ID:        s.newID(),
		SessionID: sess.ID,
		StudentID: sess.StudentID,
		DeviceID:  sess.DeviceID,
		Payload: submission.Payload{
			StudentName:    name,
			StudentID:      sess.StudentID,
			Score:          res.Score,
			TotalQuestions: res.Total,
			AllAnswers:     res.Transcript,
		},
		Status:    submission.StatusPending,
		CreatedAt: now,
	}
	if err := s.subs.Create(ctx, rec); err != nil {
		if rerr := s.store.Reopen(context.WithoutCancel(ctx), sess.ID); rerr != nil {
			s.log.Error("reopen session after failed store", "session", sess.ID, "error", rerr)
		}
		s.releaseAfterFailure(ctx, sess)
		return Receipt{}, fmt.Errorf("store submission: %w", err)
	}
	s.emit(ctx, syncx.TypeSessionSubmitted, sess.ID, map[string]any{
		"student_id": sess.StudentID, "score": res.Score, "total": res.Total, "submission_id": rec.ID,
	})

	out := Receipt{SubmissionID: rec.ID, Payload: rec.Payload, Result: res}
	if s.syncer != nil {
		if err := s.syncer.Sync(ctx, rec.ID); err != nil {
			s.log.Warn("submission queued for retry", "submission", rec.ID, "error", err)
		} else {
			out.Delivered = true
			s.emit(ctx, syncx.TypeSubmissionDelivered, rec.ID, map[string]string{"student_id": sess.StudentID})
		}
	}
	s.log.Info("session submitted", "session", sess.ID, "student", sess.StudentID,
		"score", res.Score, "total", res.Total, "delivered", out.Delivered)
	return out, nil
}

// releaseAfterFailure drops the locks taken by a submit that did not complete.
func (s *Service) releaseAfterFailure(ctx context.Context, sess Session) {
	if err := s.locker.Release(context.WithoutCancel(ctx), sess.StudentID, sess.DeviceID); err != nil {
		s.log.Error("release lock after failed submit", "session", sess.ID, "student", sess.StudentID, "error", err)
	}
}

// Retry re-delivers one stored submission on behalf of operator by.
func (s *Service) Retry(ctx context.Context, submissionID, by string) error {
	if s.syncer == nil {
		return errors.New("no submission endpoint configured")
	}
	if err := s.syncer.Sync(ctx, submissionID); err != nil {
		return err
	}
	rec, err := s.subs.Get(ctx, submissionID)
	if err == nil {
		s.emit(ctx, syncx.TypeSubmissionDelivered, rec.ID, map[string]string{"student_id": rec.StudentID, "by": by})
	}
	s.log.Info("submission redelivered", "submission", submissionID, "by", by)
	return nil
}

// ReleaseLock lets a student or device submit again.
func (s *Service) ReleaseLock(ctx context.Context, studentID, deviceID, by string) error {
	if err := s.locker.Release(ctx, studentID, deviceID); err != nil {
		return err
	}
	s.emit(ctx, syncx.TypeLockReleased, studentID, map[string]string{"student_id": studentID, "device_id": deviceID, "by": by})
	s.log.Info("submission lock released", "student", studentID, "device", deviceID, "by", by)
	return nil
}
