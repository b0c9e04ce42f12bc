package submission

import (
	"context"
	"errors"
	"time"
)

// Payload is the body posted to the results spreadsheet.
type Payload struct {
	StudentName    string `json:"studentName"`
	StudentID      string `json:"studentId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	AllAnswers     string `json:"allAnswers"`
}

type Status string

const (
	StatusPending Status = "pending"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	DeviceID  string    `json:"device_id,omitempty"`
	Payload   Payload   `json:"payload"`
	Status    Status    `json:"status"`
	Retries   int       `json:"retries"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("submission not found")

type ListOpts struct {
	Status    Status
	StudentID string
	Limit     int
	Offset    int
}

// Store persists records and their delivery status.
type Store interface {
	Create(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, opts ListOpts) ([]Record, error)

	MarkPending(ctx context.Context, id string) error
	MarkOK(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, lastErr string) error
}

// Response is what the remote endpoint answers with.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Poster delivers a payload to the remote endpoint.
type Poster interface {
	Post(ctx context.Context, p Payload) (Response, error)
}
