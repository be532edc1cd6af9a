package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/florapedia/api/internal/model"
)

// Package review implements the contribution moderation lifecycle:
// pending is the only initial state, approved and rejected are terminal.
// The transition rules are shared by the moderation endpoint and by the
// Session wrapper the reviewer CLI drives against a remote endpoint.

// Precondition errors. These are detected before any network or database
// call is attempted and must be distinguishable from transport failures.
var (
	ErrNotPending    = errors.New("contribution is not pending")
	ErrEmptyReason   = errors.New("a rejection requires a non-empty reason")
	ErrInvalidAction = errors.New("action must be approved or rejected")
	ErrInFlight      = errors.New("a moderation call is already in flight")
)

// IsPrecondition reports whether err is a client-side validation failure
// rather than a transport or server failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrEmptyReason) ||
		errors.Is(err, ErrInvalidAction)
}

// ValidateDecision checks a moderation decision against the current status.
// The reject reason is trimmed before the emptiness check.
func ValidateDecision(status, action, message string) error {
	if action != model.StatusApproved && action != model.StatusRejected {
		return ErrInvalidAction
	}
	if status != model.StatusPending {
		return ErrNotPending
	}
	if action == model.StatusRejected && strings.TrimSpace(message) == "" {
		return ErrEmptyReason
	}
	return nil
}

// Moderator is the review endpoint contract. The bearer token is an
// explicit argument on every call, never ambient state.
type Moderator interface {
	Moderate(ctx context.Context, id, action, message, token string) (*model.Contribution, error)
}

// Session wraps a single contribution under review. At most one transition
// call is in flight at a time; a concurrent attempt fails fast with
// ErrInFlight instead of queuing. On success the session adopts the
// endpoint's returned record verbatim as the new source of truth; on
// failure local state is untouched and the decision stays retryable.
type Session struct {
	mu           sync.Mutex
	submitting   bool
	contribution *model.Contribution
	moderator    Moderator
	token        string
}

func NewSession(c *model.Contribution, m Moderator, token string) *Session {
	return &Session{contribution: c, moderator: m, token: token}
}

// Contribution returns the current local record.
func (s *Session) Contribution() *model.Contribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contribution
}

// Submitting reports whether a transition call is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Approve transitions pending -> approved. The note is optional.
func (s *Session) Approve(ctx context.Context, note string) error {
	return s.transition(ctx, model.StatusApproved, note)
}

// Reject transitions pending -> rejected. The note is required and must be
// non-empty after trimming.
func (s *Session) Reject(ctx context.Context, note string) error {
	return s.transition(ctx, model.StatusRejected, note)
}

func (s *Session) transition(ctx context.Context, action, note string) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrInFlight
	}
	if err := ValidateDecision(s.contribution.Status, action, note); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.contribution.ID
	s.submitting = true
	s.mu.Unlock()

	updated, err := s.moderator.Moderate(ctx, id, action, note, s.token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		return fmt.Errorf("moderate %s: %w", action, err)
	}
	s.contribution = updated
	return nil
}
