package timectrl

import (
	"sync"
	"testing"
	"time"
)

func TestTimeController_AcceleratedRunsForDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, Accelerated)

	var mu sync.Mutex
	var ticks []time.Time
	tc.AddListener(func(now time.Time) {
		mu.Lock()
		ticks = append(ticks, now)
		mu.Unlock()
	})

	done := tc.Start(10 * time.Second)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("accelerated run did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) != 10 {
		t.Fatalf("got %d ticks, want 10", len(ticks))
	}
	if want := start.Add(10 * time.Second); !ticks[9].Equal(want) {
		t.Errorf("last tick = %v, want %v", ticks[9], want)
	}
	if got := tc.Now(); !got.Equal(start.Add(10 * time.Second)) {
		t.Errorf("Now() = %v, want %v", got, start.Add(10*time.Second))
	}
}

func TestTimeController_StopEndsOpenEndedRun(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Millisecond, Accelerated)

	done := tc.Start(0) // open-ended
	time.Sleep(10 * time.Millisecond)
	tc.Stop()
	tc.Stop() // second call must be a no-op

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("controller did not stop")
	}

	if !tc.Now().After(start) {
		t.Errorf("expected simulation time to have advanced past %v", start)
	}
}

func TestTimeController_RealTimeTicks(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 10*time.Millisecond, RealTime)

	var mu sync.Mutex
	ticks := 0
	tc.AddListener(func(time.Time) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})

	done := tc.Start(30 * time.Millisecond)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("real-time run did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if ticks != 3 {
		t.Errorf("got %d ticks, want 3", ticks)
	}
}

func TestTimeController_SetTime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, Accelerated)

	override := start.Add(42 * time.Minute)
	tc.SetTime(override)
	if got := tc.Now(); !got.Equal(override) {
		t.Errorf("Now() = %v, want %v", got, override)
	}
}

func TestTimeController_ImplementsSimClock(t *testing.T) {
	var _ SimClock = NewTimeController(time.Now(), time.Second, RealTime)
}
