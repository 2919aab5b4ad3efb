package domain

import (
	"errors"
	"testing"
)

func TestPlanTransition(t *testing.T) {
	tests := []struct {
		name       string
		from       TicketStatus
		to         TicketStatus
		resolution string
		wantErr    error
		wantCloses bool
		wantNoOp   bool
	}{
		{name: "open to in progress", from: TicketStatusOpen, to: TicketStatusInProgress},
		{name: "in progress back to open", from: TicketStatusInProgress, to: TicketStatusOpen},
		{name: "close from open", from: TicketStatusOpen, to: TicketStatusClosed, resolution: "Fixed", wantCloses: true},
		{name: "close from in progress", from: TicketStatusInProgress, to: TicketStatusClosed, resolution: " Fixed ", wantCloses: true},
		{name: "close without message", from: TicketStatusOpen, to: TicketStatusClosed, wantErr: ErrResolutionRequired},
		{name: "close with blank message", from: TicketStatusOpen, to: TicketStatusClosed, resolution: "   ", wantErr: ErrResolutionRequired},
		{name: "message without closing", from: TicketStatusOpen, to: TicketStatusInProgress, resolution: "done", wantErr: ErrUnexpectedResolution},
		{name: "same status is a no-op", from: TicketStatusOpen, to: TicketStatusOpen, wantNoOp: true},
		{name: "closed resubmitted is a no-op", from: TicketStatusClosed, to: TicketStatusClosed, resolution: "again", wantNoOp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanTransition(tt.from, tt.to, tt.resolution)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PlanTransition() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlanTransition() unexpected error: %v", err)
			}
			if plan.Closes() != tt.wantCloses {
				t.Errorf("Closes() = %v, want %v", plan.Closes(), tt.wantCloses)
			}
			if plan.NoOp() != tt.wantNoOp {
				t.Errorf("NoOp() = %v, want %v", plan.NoOp(), tt.wantNoOp)
			}
			if tt.wantCloses && plan.Resolution != "Fixed" {
				t.Errorf("Resolution = %q, want trimmed message", plan.Resolution)
			}
		})
	}
}

func TestPlanTransitionFromClosedIsRejected(t *testing.T) {
	for _, next := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress} {
		_, err := PlanTransition(TicketStatusClosed, next, "")
		var invalid *InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("closed -> %s: error = %v, want InvalidTransitionError", next, err)
		}
		if invalid.From != TicketStatusClosed || invalid.To != next {
			t.Errorf("unexpected transition in error: %+v", invalid)
		}
	}
}
