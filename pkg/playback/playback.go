package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/linguamesh/constellation/pkg/script"
)

// DefaultPhraseGap is the pause inserted between consecutive phrases, giving
// the path highlight a beat to rest on the completed phrase.
const DefaultPhraseGap = 400 * time.Millisecond

// fallbackDuration stands in when an audio source cannot report a clip's
// length; callers pacing an animation still get a usable estimate.
const fallbackDuration = 2 * time.Second

// AudioSource supplies clip metadata and playback. Play blocks until the clip
// finishes or ctx is cancelled.
type AudioSource interface {
	Duration(ctx context.Context, clipID string) (time.Duration, error)
	Play(ctx context.Context, clipID string) error
}

// Sequencer walks an ordered list of phrases, playing each one's audio clip
// and notifying the caller when a phrase begins so path highlighting can be
// paced against the clip duration.
//
// Only one sequence runs at a time: starting a new PlayAll cancels the
// previous run's context, and Stop cancels the current one. Each run carries
// a generation number so a superseded run winding down cannot disturb the
// run that replaced it. Audio failures
// on a single phrase are logged and skipped rather than aborting the whole
// sequence.
type Sequencer struct {
	mu     sync.Mutex
	logger *log.Logger
	audio  AudioSource
	gap    time.Duration
	gen    uint64
	cancel context.CancelFunc
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPhraseGap overrides the pause between phrases. Values below 0 keep the
// default; 0 disables the gap.
func WithPhraseGap(d time.Duration) Option {
	return func(s *Sequencer) {
		if d >= 0 {
			s.gap = d
		}
	}
}

// New creates a sequencer over the given audio source. A nil logger falls
// back to log.Default().
func New(audio AudioSource, logger *log.Logger, opts ...Option) *Sequencer {
	if logger == nil {
		logger = log.Default()
	}
	s := &Sequencer{
		logger: logger,
		audio:  audio,
		gap:    DefaultPhraseGap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlayAll plays the phrases in order, calling onPhrase just before each
// clip starts with the phrase and its estimated duration. It blocks until
// the sequence finishes or the context is cancelled. Starting a new PlayAll
// cancels any sequence still running.
//
// A phrase whose duration lookup or playback fails is logged and skipped;
// the sequence moves on to the next phrase.
func (s *Sequencer) PlayAll(ctx context.Context, phrases []script.Phrase, onPhrase func(script.Phrase, time.Duration)) error {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	// Release only this run's own resources on the way out. A superseded run
	// must never touch s.cancel once a newer generation has installed its own.
	defer func() {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	for i, p := range phrases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 && s.gap > 0 {
			if err := sleep(ctx, s.gap); err != nil {
				return err
			}
		}

		dur, err := s.audio.Duration(ctx, p.ClipID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("clip duration unavailable, using fallback", "phrase", p.ID, "clip", p.ClipID, "err", err)
			dur = fallbackDuration
		}

		if onPhrase != nil {
			onPhrase(p, dur)
		}

		if err := s.audio.Play(ctx, p.ClipID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("clip playback failed, skipping", "phrase", p.ID, "clip", p.ClipID, "err", err)
		}
	}
	return nil
}

// Stop cancels the running sequence, if any. The blocked PlayAll returns
// context.Canceled.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
