package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrEmptyBank        = errors.New("no questions loaded")
	ErrIncomplete       = errors.New("submission incomplete")
)

// IncompleteError carries the completion counts so the client can ask
// "you answered N of M, submit anyway?".
type IncompleteError struct {
	Answered int
	Total    int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("you have only answered %d out of %d questions", e.Answered, e.Total)
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Session is the working state of one student's attempt. Transitions return
// a new value; the store owns persistence.
type Session struct {
	ID          string            `json:"id"`
	StudentID   string            `json:"student_id"`
	DeviceID    string            `json:"device_id,omitempty"`
	Page        int               `json:"page"`
	Answers     grading.AnswerSet `json:"answers"`
	Status      Status            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
}

type ListOpts struct {
	StudentID string
	Status    Status
	Limit     int
	Offset    int
}
