package espeak

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/wptts/readaloud/tts"
)

func wavBytes(sampleRate, channels int, pcm []byte) []byte {
	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+len(pcm)))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1)
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(h[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(h[34:36], 16)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(len(pcm)))
	return append(h, pcm...)
}

type fakePlayer struct {
	mu      sync.Mutex
	playing bool
	err     error
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *fakePlayer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// drain simulates the end of the stream.
func (p *fakePlayer) drain(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.err = err
}

type fakeOutput struct {
	players chan *fakePlayer
}

func (o *fakeOutput) NewPlayer(r io.Reader) Player {
	p := &fakePlayer{}
	o.players <- p
	return p
}

type events chan tts.Event

func (ch events) wait(t *testing.T) tts.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return tts.Event{}
	}
}

func newTestEngine(t *testing.T, synth Synthesizer) (*Engine, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{players: make(chan *fakePlayer, 4)}
	if synth == nil {
		synth = func(ctx context.Context, u *tts.Utterance) ([]byte, error) {
			return wavBytes(SampleRate, Channels, make([]byte, 64)), nil
		}
	}
	e, err := New(WithOutput(out), WithSynthesizer(synth), WithVoices([]tts.Voice{{Name: "English", Language: "en", Default: true}}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e, out
}

func utterance(id uint64, ch events) *tts.Utterance {
	return &tts.Utterance{ID: id, Text: "Hello.", Rate: 1, Pitch: 1, Volume: 1, OnEvent: func(ev tts.Event) { ch <- ev }}
}

func TestSpeakPlaysToEnd(t *testing.T) {
	e, out := newTestEngine(t, nil)
	ch := make(events, 8)

	if err := e.Speak(utterance(1, ch)); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if ev := ch.wait(t); ev.Type != tts.EventStart || ev.Utterance != 1 {
		t.Fatalf("expected start, got %+v", ev)
	}

	p := <-out.players
	if !p.IsPlaying() {
		t.Fatal("expected playback to start")
	}
	p.drain(nil)

	if ev := ch.wait(t); ev.Type != tts.EventEnd {
		t.Fatalf("expected end, got %+v", ev)
	}
	if e.Speaking() {
		t.Error("engine should be idle after end")
	}
}

func TestSpeakWhileBusy(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ch := make(events, 8)

	_ = e.Speak(utterance(1, ch))
	if err := e.Speak(utterance(2, ch)); !errors.Is(err, tts.ErrEngineBusy) {
		t.Errorf("expected ErrEngineBusy, got %v", err)
	}
	e.Cancel()
}

func TestCancelDuringPlayback(t *testing.T) {
	e, out := newTestEngine(t, nil)
	ch := make(events, 8)

	_ = e.Speak(utterance(1, ch))
	ch.wait(t) // start
	p := <-out.players

	e.Cancel()
	if e.Speaking() {
		t.Error("Cancel should clear the in-flight utterance immediately")
	}
	if p.IsPlaying() {
		t.Error("Cancel should stop the player")
	}

	ev := ch.wait(t)
	if ev.Type != tts.EventError || ev.Reason != tts.ReasonCanceled {
		t.Errorf("expected canceled, got %+v", ev)
	}

	// a new utterance can start right away
	if err := e.Speak(utterance(2, ch)); err != nil {
		t.Errorf("Speak after cancel failed: %v", err)
	}
	e.Cancel()
}

func TestCancelDuringSynthesis(t *testing.T) {
	started := make(chan struct{})
	e, _ := newTestEngine(t, func(ctx context.Context, u *tts.Utterance) ([]byte, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ch := make(events, 8)

	_ = e.Speak(utterance(1, ch))
	<-started
	e.Cancel()

	ev := ch.wait(t)
	if ev.Type != tts.EventError || ev.Reason != tts.ReasonCanceled {
		t.Errorf("expected canceled, got %+v", ev)
	}
}

func TestSynthesisFailures(t *testing.T) {
	tests := []struct {
		name  string
		synth Synthesizer
	}{
		{"process error", func(ctx context.Context, u *tts.Utterance) ([]byte, error) {
			return nil, errors.New("exit status 1")
		}},
		{"not wav", func(ctx context.Context, u *tts.Utterance) ([]byte, error) {
			return []byte("garbage"), nil
		}},
		{"wrong sample rate", func(ctx context.Context, u *tts.Utterance) ([]byte, error) {
			return wavBytes(44100, 2, make([]byte, 16)), nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, tt.synth)
			ch := make(events, 8)

			_ = e.Speak(utterance(1, ch))
			ev := ch.wait(t)
			if ev.Type != tts.EventError || ev.Reason != tts.ReasonSynthesis {
				t.Errorf("expected synthesis failure, got %+v", ev)
			}
			if ev.Err == nil {
				t.Error("expected the failure cause on the event")
			}
			if e.Speaking() {
				t.Error("engine should be idle after failure")
			}
		})
	}
}

func TestPlaybackError(t *testing.T) {
	e, out := newTestEngine(t, nil)
	ch := make(events, 8)

	_ = e.Speak(utterance(1, ch))
	ch.wait(t)
	busy := errors.New("device busy")
	(<-out.players).drain(busy)

	ev := ch.wait(t)
	if ev.Type != tts.EventError || ev.Reason != tts.ReasonAudio {
		t.Errorf("expected audio failure, got %+v", ev)
	}
	if err := ev.Failure(); !errors.Is(err, busy) || tts.IsBenign(err) {
		t.Errorf("Failure() = %v, want a genuine error wrapping %v", err, busy)
	}
}

func TestPauseResume(t *testing.T) {
	e, out := newTestEngine(t, nil)
	ch := make(events, 8)

	_ = e.Speak(utterance(1, ch))
	ch.wait(t)
	p := <-out.players

	e.Pause()
	if !e.Paused() || p.IsPlaying() {
		t.Fatal("expected paused playback")
	}

	select {
	case ev := <-ch:
		t.Fatalf("paused utterance must not finish, got %+v", ev)
	case <-time.After(5 * pollInterval):
	}

	e.Resume()
	if e.Paused() || !p.IsPlaying() {
		t.Fatal("expected resumed playback")
	}
	p.drain(nil)
	if ev := ch.wait(t); ev.Type != tts.EventEnd {
		t.Errorf("expected end, got %+v", ev)
	}
}

func TestPauseBeforePlayback(t *testing.T) {
	release := make(chan struct{})
	e, out := newTestEngine(t, func(ctx context.Context, u *tts.Utterance) ([]byte, error) {
		<-release
		return wavBytes(SampleRate, Channels, make([]byte, 8)), nil
	})
	ch := make(events, 8)

	_ = e.Speak(utterance(1, ch))
	e.Pause()
	close(release)

	ch.wait(t) // start
	p := <-out.players
	if p.IsPlaying() {
		t.Error("player must stay held when paused during synthesis")
	}
	e.Resume()
	if !p.IsPlaying() {
		t.Error("expected playback after resume")
	}
	e.Cancel()
}

func TestVoices(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	voices := e.Voices()
	if len(voices) != 1 || voices[0].Name != "English" {
		t.Errorf("unexpected voices %+v", voices)
	}
}
