package animate

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestStepDelayFloor(t *testing.T) {
	a := New(func(int) {}, testLogger())
	if a.minStep != DefaultMinStepDelay {
		t.Fatalf("default floor = %v, want %v", a.minStep, DefaultMinStepDelay)
	}

	a = New(func(int) {}, testLogger(), WithMinStepDelay(2*time.Millisecond))
	if a.minStep != 2*time.Millisecond {
		t.Fatalf("floor override = %v", a.minStep)
	}

	a = New(func(int) {}, testLogger(), WithMinStepDelay(0))
	if a.minStep != DefaultMinStepDelay {
		t.Fatalf("zero override should keep default, got %v", a.minStep)
	}
}

func TestAnimationAdvancesInOrder(t *testing.T) {
	var mu sync.Mutex
	var steps []int
	a := New(func(i int) {
		mu.Lock()
		steps = append(steps, i)
		mu.Unlock()
	}, testLogger(), WithMinStepDelay(2*time.Millisecond))

	// 5 steps over 10ms: per-step delay is 2ms.
	a.Start(5, 10*time.Millisecond)

	ok := waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(steps) == 5
	})
	if !ok {
		t.Fatalf("animation did not complete: got %v", steps)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, s := range steps {
		if s != i {
			t.Fatalf("steps out of order: %v", steps)
		}
	}
}

func TestVeryShortAudioUsesFloor(t *testing.T) {
	a := New(func(int) {}, testLogger(), WithMinStepDelay(20*time.Millisecond))

	start := time.Now()
	done := make(chan struct{}, 1)
	var count atomic.Int32
	a.advance = func(int) {
		if count.Add(1) == 3 {
			done <- struct{}{}
		}
	}

	// 3 steps over 1ms of audio: the floor must stretch pacing to 20ms/step.
	a.Start(3, time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation never completed")
	}

	// Last step fires at 2 × 20ms.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("completed in %v; floor not applied", elapsed)
	}
}

func TestStartCancelsPriorAnimation(t *testing.T) {
	var total atomic.Int32
	a := New(func(int) { total.Add(1) }, testLogger(), WithMinStepDelay(5*time.Millisecond))

	// First animation would tick 100 times; supersede it almost immediately.
	a.Start(100, 0)
	time.Sleep(12 * time.Millisecond)
	atSwitch := total.Load()

	gen := a.Start(3, 0)
	if gen != a.Generation() {
		t.Fatalf("Start returned stale generation %d", gen)
	}

	ok := waitFor(t, time.Second, func() bool { return total.Load() >= atSwitch+3 })
	if !ok {
		t.Fatalf("second animation did not finish: %d ticks total", total.Load())
	}

	// Give any stragglers from the cancelled chain time to (incorrectly)
	// fire, then confirm the count settled: at most the 3 new ticks plus one
	// in-flight tick from the cancellation window.
	settled := total.Load()
	time.Sleep(60 * time.Millisecond)
	final := total.Load()

	if final != settled {
		t.Errorf("ticks kept arriving after the new animation finished: %d → %d", settled, final)
	}
	if final > atSwitch+3+1 {
		t.Errorf("cancelled animation leaked ticks: %d fired after %d at switch", final-atSwitch, atSwitch)
	}
}

func TestStopCancelsEverything(t *testing.T) {
	var total atomic.Int32
	a := New(func(int) { total.Add(1) }, testLogger(), WithMinStepDelay(5*time.Millisecond))

	a.Start(50, 0)
	time.Sleep(12 * time.Millisecond)
	a.Stop()
	at := total.Load()

	time.Sleep(50 * time.Millisecond)
	if final := total.Load(); final > at+1 {
		t.Errorf("ticks after Stop: %d → %d", at, final)
	}
}

func TestZeroStepsIsNoop(t *testing.T) {
	var total atomic.Int32
	a := New(func(int) { total.Add(1) }, testLogger(), WithMinStepDelay(time.Millisecond))

	a.Start(0, time.Second)
	a.Start(-3, time.Second)
	time.Sleep(20 * time.Millisecond)

	if total.Load() != 0 {
		t.Errorf("empty animation ticked %d times", total.Load())
	}
}

func TestGenerationAdvances(t *testing.T) {
	a := New(nil, testLogger(), WithMinStepDelay(time.Millisecond))
	g1 := a.Start(1, 0)
	g2 := a.Start(1, 0)
	if g2 <= g1 {
		t.Errorf("generations not monotonic: %d then %d", g1, g2)
	}
	a.Stop()
	if a.Generation() <= g2 {
		t.Error("Stop did not supersede the generation")
	}
}
