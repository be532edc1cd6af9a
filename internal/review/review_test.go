package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/florapedia/api/internal/model"
	"github.com/florapedia/api/internal/review"
)

type fakeModerator struct {
	calls  int
	action string
	note   string
	token  string
	result *model.Contribution
	err    error
	block  chan struct{}
}

func (f *fakeModerator) Moderate(ctx context.Context, id, action, message, token string) (*model.Contribution, error) {
	f.calls++
	f.action = action
	f.note = message
	f.token = token
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func pendingContribution() *model.Contribution {
	return &model.Contribution{
		ID:     "c1",
		Type:   model.ContributionTypeUpdate,
		Status: model.StatusPending,
	}
}

func TestValidateDecision(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		action  string
		message string
		wantErr error
	}{
		{"approve pending", model.StatusPending, model.StatusApproved, "", nil},
		{"reject pending with reason", model.StatusPending, model.StatusRejected, "low quality photos", nil},
		{"reject empty reason", model.StatusPending, model.StatusRejected, "", review.ErrEmptyReason},
		{"reject whitespace reason", model.StatusPending, model.StatusRejected, "   ", review.ErrEmptyReason},
		{"approve already approved", model.StatusApproved, model.StatusApproved, "", review.ErrNotPending},
		{"reject already rejected", model.StatusRejected, model.StatusRejected, "again", review.ErrNotPending},
		{"unknown action", model.StatusPending, "published", "", review.ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := review.ValidateDecision(tt.status, tt.action, tt.message)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDecision() = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !review.IsPrecondition(err) {
				t.Errorf("expected %v to classify as precondition failure", err)
			}
		})
	}
}

func TestSession_ApproveAdoptsServerRecord(t *testing.T) {
	approved := pendingContribution()
	approved.Status = model.StatusApproved
	mod := &fakeModerator{result: approved}
	s := review.NewSession(pendingContribution(), mod, "tok-123")

	if err := s.Approve(context.Background(), ""); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if mod.calls != 1 {
		t.Fatalf("moderator called %d times, want 1", mod.calls)
	}
	if mod.action != model.StatusApproved || mod.token != "tok-123" {
		t.Errorf("moderator got action=%q token=%q", mod.action, mod.token)
	}
	if got := s.Contribution().Status; got != model.StatusApproved {
		t.Errorf("status = %q, want approved", got)
	}
	if s.Submitting() {
		t.Error("submitting still true after call resolved")
	}

	// Terminal record: a second approve is blocked before any call.
	err := s.Approve(context.Background(), "")
	if !errors.Is(err, review.ErrNotPending) {
		t.Errorf("second Approve() = %v, want ErrNotPending", err)
	}
	if mod.calls != 1 {
		t.Errorf("moderator called again on terminal record")
	}
}

func TestSession_RejectPreconditions(t *testing.T) {
	mod := &fakeModerator{}
	s := review.NewSession(pendingContribution(), mod, "tok")

	for _, note := range []string{"", "   "} {
		err := s.Reject(context.Background(), note)
		if !errors.Is(err, review.ErrEmptyReason) {
			t.Errorf("Reject(%q) = %v, want ErrEmptyReason", note, err)
		}
	}
	if mod.calls != 0 {
		t.Errorf("moderator called %d times before preconditions passed", mod.calls)
	}
}

func TestSession_TransportFailureLeavesStateRetryable(t *testing.T) {
	mod := &fakeModerator{err: errors.New("connection refused")}
	s := review.NewSession(pendingContribution(), mod, "tok")

	err := s.Reject(context.Background(), "low quality photos")
	if err == nil {
		t.Fatal("Reject() succeeded despite transport failure")
	}
	if review.IsPrecondition(err) {
		t.Errorf("transport failure classified as precondition: %v", err)
	}
	if got := s.Contribution().Status; got != model.StatusPending {
		t.Errorf("status = %q after failure, want pending", got)
	}
	if s.Submitting() {
		t.Error("submitting still true after failed call")
	}

	// Retry succeeds once the endpoint recovers.
	rejected := pendingContribution()
	rejected.Status = model.StatusRejected
	rejected.ReviewMessage = "low quality photos"
	mod.err = nil
	mod.result = rejected
	if err := s.Reject(context.Background(), "low quality photos"); err != nil {
		t.Fatalf("retry Reject() error = %v", err)
	}
	if got := s.Contribution().Status; got != model.StatusRejected {
		t.Errorf("status = %q after retry, want rejected", got)
	}
}

func TestSession_SingleInFlightCall(t *testing.T) {
	approved := pendingContribution()
	approved.Status = model.StatusApproved
	mod := &fakeModerator{result: approved, block: make(chan struct{})}
	s := review.NewSession(pendingContribution(), mod, "tok")

	done := make(chan error, 1)
	go func() {
		done <- s.Approve(context.Background(), "")
	}()

	// Wait for the first call to be in flight.
	for !s.Submitting() {
		time.Sleep(time.Millisecond)
	}

	if err := s.Reject(context.Background(), "dup"); !errors.Is(err, review.ErrInFlight) {
		t.Errorf("concurrent Reject() = %v, want ErrInFlight", err)
	}

	close(mod.block)
	if err := <-done; err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if mod.calls != 1 {
		t.Errorf("moderator called %d times, want 1", mod.calls)
	}
}
