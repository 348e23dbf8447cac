package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/linguamesh/constellation/pkg/script"
)

// fakeAudio records play calls and simulates clip duration with real sleeps.
type fakeAudio struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	durErr    map[string]error
	playErr   map[string]error
	played    []string
	playDelay time.Duration
	delays    map[string]time.Duration // per-clip override of playDelay
}

func (f *fakeAudio) Duration(ctx context.Context, clipID string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.durErr[clipID]; err != nil {
		return 0, err
	}
	return f.durations[clipID], nil
}

func (f *fakeAudio) Play(ctx context.Context, clipID string) error {
	delay := f.playDelay
	if d, ok := f.delays[clipID]; ok {
		delay = d
	}
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, clipID)
	return f.playErr[clipID]
}

func (f *fakeAudio) playedClips() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func phrases(clips ...string) []script.Phrase {
	out := make([]script.Phrase, len(clips))
	for i, c := range clips {
		out[i] = script.Phrase{ID: "p-" + c, ClipID: c}
	}
	return out
}

func TestPlayAllInOrder(t *testing.T) {
	audio := &fakeAudio{durations: map[string]time.Duration{"a": time.Second, "b": 2 * time.Second}}
	seq := New(audio, nil, WithPhraseGap(0))

	var starts []string
	var durs []time.Duration
	err := seq.PlayAll(context.Background(), phrases("a", "b"), func(p script.Phrase, d time.Duration) {
		starts = append(starts, p.ClipID)
		durs = append(durs, d)
	})
	if err != nil {
		t.Fatalf("PlayAll: %v", err)
	}
	if got := audio.playedClips(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("played = %v, want [a b]", got)
	}
	if len(starts) != 2 || starts[0] != "a" || starts[1] != "b" {
		t.Errorf("phrase starts = %v, want [a b]", starts)
	}
	if durs[0] != time.Second || durs[1] != 2*time.Second {
		t.Errorf("durations = %v", durs)
	}
}

func TestPlayAllSkipsFailedClips(t *testing.T) {
	audio := &fakeAudio{
		durations: map[string]time.Duration{"a": time.Second, "b": time.Second, "c": time.Second},
		playErr:   map[string]error{"b": errors.New("decoder choked")},
	}
	seq := New(audio, nil, WithPhraseGap(0))

	err := seq.PlayAll(context.Background(), phrases("a", "b", "c"), nil)
	if err != nil {
		t.Fatalf("PlayAll: %v", err)
	}
	if got := audio.playedClips(); len(got) != 3 {
		t.Errorf("played = %v, want all three attempted", got)
	}
}

func TestPlayAllFallbackDuration(t *testing.T) {
	audio := &fakeAudio{durErr: map[string]error{"a": errors.New("no metadata")}}
	seq := New(audio, nil, WithPhraseGap(0))

	var got time.Duration
	err := seq.PlayAll(context.Background(), phrases("a"), func(_ script.Phrase, d time.Duration) {
		got = d
	})
	if err != nil {
		t.Fatalf("PlayAll: %v", err)
	}
	if got != fallbackDuration {
		t.Errorf("duration = %v, want fallback %v", got, fallbackDuration)
	}
}

func TestStopCancelsSequence(t *testing.T) {
	audio := &fakeAudio{playDelay: 5 * time.Second}
	seq := New(audio, nil, WithPhraseGap(0))

	done := make(chan error, 1)
	go func() {
		done <- seq.PlayAll(context.Background(), phrases("a", "b"), nil)
	}()

	time.Sleep(20 * time.Millisecond)
	seq.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("PlayAll returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("PlayAll did not return after Stop")
	}
	if got := audio.playedClips(); len(got) != 0 {
		t.Errorf("played = %v, want none completed", got)
	}
}

func TestNewPlayAllSupersedesOld(t *testing.T) {
	audio := &fakeAudio{delays: map[string]time.Duration{"old": 5 * time.Second}}
	seq := New(audio, nil, WithPhraseGap(0))

	first := make(chan error, 1)
	go func() {
		first <- seq.PlayAll(context.Background(), phrases("old"), nil)
	}()
	time.Sleep(20 * time.Millisecond)

	// The second run must both supersede the first and survive the first's
	// teardown: the old run winding down may not cancel its replacement.
	second := make(chan error, 1)
	go func() {
		second <- seq.PlayAll(context.Background(), phrases("new-a", "new-b"), nil)
	}()

	select {
	case err := <-first:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first PlayAll returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first PlayAll not cancelled by second")
	}

	select {
	case err := <-second:
		if err != nil {
			t.Errorf("second PlayAll = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second PlayAll did not complete")
	}
	if got := audio.playedClips(); len(got) != 2 || got[0] != "new-a" || got[1] != "new-b" {
		t.Errorf("played = %v, want [new-a new-b]", got)
	}
}

func TestPlayAllHonorsCallerContext(t *testing.T) {
	audio := &fakeAudio{}
	seq := New(audio, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := seq.PlayAll(ctx, phrases("a"), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("PlayAll = %v, want context.Canceled", err)
	}
}
