package health

import (
	"testing"
)

func TestTracker_StartsConnecting(t *testing.T) {
	tracker := NewTracker(TrackerConfig{MaxErrors: 3, MaxRecoveryAttempts: 2})

	if got := tracker.State(); got != StateConnecting {
		t.Errorf("State() = %v, want connecting", got)
	}
	if !tracker.IsHealthy() {
		t.Error("Fresh tracker should be healthy")
	}
}

func TestTracker_SuccessResetsErrors(t *testing.T) {
	tracker := NewTracker(TrackerConfig{MaxErrors: 5, MaxRecoveryAttempts: 2})

	tracker.RecordError()
	tracker.RecordError()
	tracker.RecordSuccess()

	if got := tracker.ErrorCount(); got != 0 {
		t.Errorf("ErrorCount() after success = %d, want 0", got)
	}
	if got := tracker.State(); got != StateConnected {
		t.Errorf("State() after success = %v, want connected", got)
	}
	if tracker.LastSuccess().IsZero() {
		t.Error("LastSuccess() should be set after RecordSuccess")
	}
}

func TestTracker_ErrorThresholdEntersRecovering(t *testing.T) {
	tracker := NewTracker(TrackerConfig{MaxErrors: 3, MaxRecoveryAttempts: 2})

	tracker.RecordError()
	tracker.RecordError()
	if got := tracker.State(); got != StateConnecting {
		t.Errorf("State() below threshold = %v, want connecting", got)
	}
	if !tracker.IsHealthy() {
		t.Error("Tracker below threshold should be healthy")
	}

	tracker.RecordError()
	if got := tracker.State(); got != StateRecovering {
		t.Errorf("State() at threshold = %v, want recovering", got)
	}
	if tracker.IsHealthy() {
		t.Error("Tracker at error threshold should be unhealthy")
	}
}

func TestTracker_RecoveryExhaustionIsTerminal(t *testing.T) {
	tracker := NewTracker(TrackerConfig{
		MaxErrors:           2,
		MaxRecoveryAttempts: 2,
		RecoveryDecrement:   1,
	})

	tracker.RecordError()
	tracker.RecordError()

	if !tracker.AttemptRecovery() {
		t.Fatal("first AttemptRecovery() should succeed")
	}
	if got := tracker.ErrorCount(); got != 1 {
		t.Errorf("ErrorCount() after recovery = %d, want 1", got)
	}

	tracker.RecordError()
	if !tracker.AttemptRecovery() {
		t.Fatal("second AttemptRecovery() should succeed")
	}

	tracker.RecordError()
	tracker.RecordError()
	if tracker.AttemptRecovery() {
		t.Error("third AttemptRecovery() should fail, attempts exhausted")
	}
	if got := tracker.State(); got != StateError {
		t.Errorf("State() after exhaustion = %v, want error", got)
	}
	if tracker.IsHealthy() {
		t.Error("Tracker in error state must not be healthy")
	}
}

func TestTracker_SuccessRestoresRecoveryBudget(t *testing.T) {
	tracker := NewTracker(TrackerConfig{MaxErrors: 2, MaxRecoveryAttempts: 1})

	tracker.RecordError()
	tracker.RecordError()
	tracker.AttemptRecovery()
	tracker.RecordSuccess()

	tracker.RecordError()
	tracker.RecordError()
	if !tracker.AttemptRecovery() {
		t.Error("AttemptRecovery() should succeed again after a success reset the budget")
	}
}

// счетчик ошибок не уходит в минус ни при какой последовательности событий
func TestTracker_ErrorCountNeverNegative(t *testing.T) {
	tracker := NewTracker(TrackerConfig{
		MaxErrors:           3,
		MaxRecoveryAttempts: 10,
		RecoveryDecrement:   5,
	})

	events := []func(){
		tracker.RecordSuccess,
		func() { tracker.AttemptRecovery() },
		tracker.RecordError,
		func() { tracker.AttemptRecovery() },
		tracker.RecordSuccess,
		func() { tracker.AttemptRecovery() },
	}

	for i, ev := range events {
		ev()
		if got := tracker.ErrorCount(); got < 0 {
			t.Fatalf("ErrorCount() went negative (%d) after event %d", got, i)
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateRecovering, "recovering"},
		{StateError, "error"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
