package animate

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultMinStepDelay is the floor on the per-step delay, so very short audio
// never produces an imperceptibly fast flicker.
const DefaultMinStepDelay = 150 * time.Millisecond

// Animator schedules a timed reveal of an ordered node-id sequence, paced to
// match an externally supplied audio duration. Each step advances a cursor
// callback; the callback typically drives the store's highlight cursor.
//
// At most one timer chain is live at any time: starting a new animation
// cancels every timer the previous one scheduled before the first new timer
// is created. Ticks from a superseded generation that already fired their
// timer silently no-op. That single-flight discipline is the component's
// primary correctness requirement.
//
// Pacing is open-loop: steps are scheduled against wall-clock estimates, not
// live audio position. Acceptable for short clips.
type Animator struct {
	mu      sync.Mutex
	logger  *log.Logger
	advance func(step int)
	minStep time.Duration

	gen    uint64
	timers []*time.Timer
}

// Option configures an Animator.
type Option func(*Animator)

// WithMinStepDelay overrides the per-step delay floor. Values of 0 or less
// keep the default; tests use small floors to run fast.
func WithMinStepDelay(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.minStep = d
		}
	}
}

// New creates an animator that calls advance(step) once per scheduled step,
// in order. A nil logger falls back to log.Default().
func New(advance func(step int), logger *log.Logger, opts ...Option) *Animator {
	if logger == nil {
		logger = log.Default()
	}
	a := &Animator{
		logger:  logger,
		advance: advance,
		minStep: DefaultMinStepDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start begins animating over n steps paced to audioDuration: the per-step
// delay is the duration divided evenly across steps, floored at the minimum
// step delay. Any previously scheduled timers are cancelled first.
//
// Step i fires at delay×i, so the first step lights immediately (the first
// word is already being spoken) and the last lands one step before the audio
// estimate runs out.
//
// Returns the animation's generation, mainly so tests can correlate ticks.
func (a *Animator) Start(n int, audioDuration time.Duration) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	a.gen++
	gen := a.gen

	if n <= 0 {
		return gen
	}

	step := audioDuration / time.Duration(n)
	if step < a.minStep {
		step = a.minStep
	}

	a.timers = make([]*time.Timer, 0, n)
	for i := 0; i < n; i++ {
		i := i
		a.timers = append(a.timers, time.AfterFunc(step*time.Duration(i), func() {
			a.tick(gen, i)
		}))
	}

	a.logger.Debug("path animation started", "steps", n, "step_delay", step, "generation", gen)
	return gen
}

// Stop cancels all pending timers. In-flight callbacks of the stopped
// generation become no-ops.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
	a.gen++
}

// Generation returns the current animation generation.
func (a *Animator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// tick runs on the timer goroutine. The generation check makes stale ticks
// from a superseded animation no-op before touching shared state.
func (a *Animator) tick(gen uint64, step int) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	advance := a.advance
	a.mu.Unlock()

	if advance != nil {
		advance(step)
	}
}

// cancelLocked stops every pending timer. Caller holds the lock.
func (a *Animator) cancelLocked() {
	for _, t := range a.timers {
		t.Stop()
	}
	a.timers = nil
}
