package resilience

import (
	"testing"
	"time"
)

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	b := New("test", Settings{Threshold: 3, Cooldown: time.Minute})

	b.Failure()
	b.Failure()
	if b.State() != StateClosed {
		t.Fatalf("state = %v after 2 of 3 failures", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Errorf("closed breaker refused work: %v", err)
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := New("test", Settings{Threshold: 3, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		b.Failure()
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v", b.State())
	}
	if err := b.Allow(); err != ErrOpen {
		t.Errorf("open breaker admitted work: %v", err)
	}
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b := New("test", Settings{Threshold: 2, Cooldown: time.Minute})

	b.Failure()
	b.Success()
	b.Failure()
	if b.State() != StateClosed {
		t.Errorf("non-consecutive failures tripped the breaker")
	}
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	b := New("test", Settings{Threshold: 1, Cooldown: 10 * time.Millisecond})

	b.Failure()
	if b.Allow() != ErrOpen {
		t.Fatal("breaker did not open")
	}

	time.Sleep(20 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("breaker refused the probe: %v", err)
	}
	// only one probe at a time
	if err := b.Allow(); err != ErrOpen {
		t.Errorf("second concurrent probe admitted: %v", err)
	}

	b.Success()
	if b.State() != StateClosed {
		t.Errorf("state after probe success = %v", b.State())
	}
}

func TestBreakerReopensOnProbeFailure(t *testing.T) {
	b := New("test", Settings{Threshold: 1, Cooldown: 10 * time.Millisecond})

	b.Failure()
	time.Sleep(20 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe refused: %v", err)
	}
	b.Failure()
	if b.State() != StateOpen {
		t.Errorf("state after probe failure = %v", b.State())
	}
	if b.Allow() != ErrOpen {
		t.Error("breaker admitted work right after a failed probe")
	}
}

func TestBreakerReportsStateChanges(t *testing.T) {
	var transitions []State
	b := New("test", Settings{
		Threshold: 1,
		Cooldown:  time.Minute,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, to)
		},
	})

	b.Failure()
	b.Success()
	want := []State{StateOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half-open" {
		t.Error("state names changed")
	}
}
