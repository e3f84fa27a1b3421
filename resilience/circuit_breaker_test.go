package resilience

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(maxFailures int, cooldown time.Duration) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: maxFailures,
		Timeout:     cooldown,
	})
	cb.now = clock.Now
	return cb, clock
}

func TestCircuitBreaker_StartsInClosedState(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test"))

	if cb.State() != StateClosed {
		t.Errorf("expected StateClosed, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Error("closed breaker should allow calls")
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		cb.OnFailure()
		if !cb.Allow() {
			t.Fatalf("breaker opened early after %d failures", i+1)
		}
	}
	cb.OnFailure()

	if cb.State() != StateOpen {
		t.Fatalf("expected StateOpen, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("open breaker should reject calls")
	}
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	cb.OnFailure()
	cb.OnSuccess()
	cb.OnFailure()

	if cb.State() != StateClosed {
		t.Errorf("non-consecutive failures should not open, got %s", cb.State())
	}
	if cb.Failures() != 1 {
		t.Errorf("expected 1 failure, got %d", cb.Failures())
	}
}

func TestCircuitBreaker_RejectsUntilCooldownElapses(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)
	cb.OnFailure()

	clock.Advance(9 * time.Second)
	if cb.Allow() {
		t.Fatal("breaker should still reject before the cool-down elapses")
	}

	clock.Advance(time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected StateHalfOpen, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)
	cb.OnFailure()
	clock.Advance(time.Second)

	if !cb.Allow() {
		t.Fatal("first call after cool-down should be admitted")
	}
	if cb.Allow() {
		t.Fatal("second call while the trial is pending should be rejected")
	}
}

func TestCircuitBreaker_TrialSuccessCloses(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)
	cb.OnFailure()
	clock.Advance(time.Second)

	if !cb.Allow() {
		t.Fatal("trial should be admitted")
	}
	cb.OnSuccess()

	if cb.State() != StateClosed {
		t.Fatalf("expected StateClosed, got %s", cb.State())
	}
	if !cb.Allow() || !cb.Allow() {
		t.Error("closed breaker should admit calls freely")
	}
}

func TestCircuitBreaker_TrialFailureReopensForFullCooldown(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)
	cb.OnFailure()
	clock.Advance(10 * time.Second)

	if !cb.Allow() {
		t.Fatal("trial should be admitted")
	}
	cb.OnFailure()

	if cb.State() != StateOpen {
		t.Fatalf("expected StateOpen, got %s", cb.State())
	}

	clock.Advance(9 * time.Second)
	if cb.Allow() {
		t.Fatal("reopened breaker should wait a full cool-down")
	}
	clock.Advance(time.Second)
	if !cb.Allow() {
		t.Fatal("a new trial should be admitted after the second cool-down")
	}
}

func TestCircuitBreaker_LateFailureWhileOpenKeepsCooldown(t *testing.T) {
	cb, clock := newTestBreaker(1, 10*time.Second)
	cb.OnFailure()

	// a call admitted before the trip reports its failure later
	clock.Advance(8 * time.Second)
	cb.OnFailure()

	clock.Advance(2 * time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected StateHalfOpen once the cool-down since opening elapsed, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Error("trial should be admitted")
	}
}

func TestCircuitBreaker_ReleaseFreesTrialSlot(t *testing.T) {
	cb, clock := newTestBreaker(1, time.Second)
	cb.OnFailure()
	clock.Advance(time.Second)

	if !cb.Allow() {
		t.Fatal("trial should be admitted")
	}
	cb.Release()

	if cb.State() != StateHalfOpen {
		t.Fatalf("release should not change state, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Fatal("released trial slot should admit another call")
	}
	if cb.Allow() {
		t.Error("only one trial should be pending")
	}
}

func TestCircuitBreaker_ReleaseWhileClosedIsNeutral(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)
	cb.OnFailure()

	ReleaseGuard(cb)

	if cb.State() != StateClosed || cb.Failures() != 1 {
		t.Errorf("expected closed with 1 failure, got %s with %d", cb.State(), cb.Failures())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Hour)
	cb.OnFailure()

	cb.Reset()

	if cb.State() != StateClosed {
		t.Errorf("expected StateClosed after reset, got %s", cb.State())
	}
	if cb.Failures() != 0 {
		t.Errorf("expected 0 failures after reset, got %d", cb.Failures())
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var changes []struct{ from, to State }

	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 1,
		Timeout:     time.Second,
		OnStateChange: func(name string, from, to State) {
			if name != "test" {
				t.Errorf("expected name test, got %q", name)
			}
			changes = append(changes, struct{ from, to State }{from, to})
		},
	})
	cb.now = clock.Now

	cb.OnFailure()
	clock.Advance(time.Second)
	cb.Allow()
	cb.OnSuccess()

	want := []struct{ from, to State }{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}
	if len(changes) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(changes))
	}
	for i, w := range want {
		if changes[i] != w {
			t.Errorf("transition %d: expected %s->%s, got %s->%s", i, w.from, w.to, changes[i].from, changes[i].to)
		}
	}
}

func TestCircuitBreaker_ConcurrentFailuresAreNotLost(t *testing.T) {
	cb, _ := newTestBreaker(1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 999; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb.OnFailure()
		}()
	}
	wg.Wait()

	if cb.Failures() != 999 {
		t.Fatalf("expected 999 failures, got %d", cb.Failures())
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected StateClosed, got %s", cb.State())
	}

	cb.OnFailure()
	if cb.State() != StateOpen {
		t.Errorf("expected StateOpen at threshold, got %s", cb.State())
	}
}

func TestNoopGuard(t *testing.T) {
	var g Guard = NoopGuard{}
	for i := 0; i < 10; i++ {
		g.OnFailure()
	}
	if !g.Allow() {
		t.Error("NoopGuard should always allow")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}
