package model

import (
	"sync"
	"time"

	"github.com/lama-assaf/agent-llama/internal/clock"
)

// SubmissionState represents a submission lifecycle state.
type SubmissionState string

const (
	StatePending   SubmissionState = "pending"
	StateQueued    SubmissionState = "queued"
	StateRunning   SubmissionState = "running"
	StateCompleted SubmissionState = "completed"
	StateFailed    SubmissionState = "failed"
	StateCanceled  SubmissionState = "canceled"
)

// Submission records a task's trip through the admission gate. The admission
// queue itself keeps no history; submissions are the caller-facing ledger of
// what was asked for, when it started and how it ended.
type Submission struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"sessionId,omitempty"`
	Kind        string          `json:"kind"`
	Payload     string          `json:"payload"`
	State       SubmissionState `json:"state"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`

	mu sync.RWMutex
}

// NewSubmission creates a pending submission.
func NewSubmission(id, sessionID, kind, payload string) *Submission {
	return &Submission{
		ID:        id,
		SessionID: sessionID,
		Kind:      kind,
		Payload:   payload,
		State:     StatePending,
		CreatedAt: clock.Now(),
	}
}

// GetState returns the current state.
func (s *Submission) GetState() SubmissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State
}

// SetState updates the current state.
func (s *Submission) SetState(state SubmissionState) {
	s.mu.Lock()
	s.State = state
	s.mu.Unlock()
}

// MarkQueued transitions a pending submission to queued. It reports whether
// the transition applied; a submission the dispatcher already picked up is
// left alone.
func (s *Submission) MarkQueued() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State != StatePending {
		return false
	}
	s.State = StateQueued
	return true
}

// Start marks the submission running and records the start time.
func (s *Submission) Start() {
	now := clock.Now()
	s.mu.Lock()
	s.State = StateRunning
	s.StartedAt = &now
	s.mu.Unlock()
}

// Finish marks the submission completed.
func (s *Submission) Finish() {
	now := clock.Now()
	s.mu.Lock()
	s.State = StateCompleted
	s.CompletedAt = &now
	s.mu.Unlock()
}

// Fail marks the submission failed with the given cause.
func (s *Submission) Fail(err error) {
	now := clock.Now()
	s.mu.Lock()
	s.State = StateFailed
	if err != nil {
		s.Error = err.Error()
	}
	s.CompletedAt = &now
	s.mu.Unlock()
}

// CancelWaiting marks a still-queued submission canceled. It reports whether
// the transition applied; a submission that already started is untouched.
func (s *Submission) CancelWaiting() bool {
	now := clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State != StatePending && s.State != StateQueued {
		return false
	}
	s.State = StateCanceled
	s.CompletedAt = &now
	return true
}
