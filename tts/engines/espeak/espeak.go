// Package espeak implements a local speech engine on top of the espeak-ng
// (or espeak) command line synthesizer. Each utterance is synthesized to WAV
// in a child process and played through the system audio device, which
// gives true pause and resume.
package espeak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wptts/readaloud/tts"
)

// Binaries are tried in order.
var Binaries = []string{"espeak-ng", "espeak"}

const pollInterval = 20 * time.Millisecond

// Synthesizer turns an utterance into a WAV file.
type Synthesizer func(ctx context.Context, u *tts.Utterance) ([]byte, error)

// Engine is a tts.Engine backed by espeak.
type Engine struct {
	mu      sync.Mutex
	binary  string
	synth   Synthesizer
	out     Output
	voices  []tts.Voice
	current *job
	logger  *log.Logger
}

type job struct {
	u      *tts.Utterance
	ctx    context.Context
	cancel context.CancelFunc
	player Player
	paused bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput replaces the audio device.
func WithOutput(out Output) Option {
	return func(e *Engine) {
		e.out = out
	}
}

// WithSynthesizer replaces the espeak subprocess.
func WithSynthesizer(s Synthesizer) Option {
	return func(e *Engine) {
		e.synth = s
	}
}

// WithVoices sets the voice list instead of asking the binary for it.
func WithVoices(voices []tts.Voice) Option {
	return func(e *Engine) {
		e.voices = voices
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New locates the synthesizer, lists its voices and opens the audio device.
// It fails with tts.ErrUnsupported when either is unavailable.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if e.synth == nil {
		bin, err := FindBinary()
		if err != nil {
			return nil, err
		}
		e.binary = bin
		e.synth = e.runBinary
		if e.voices == nil {
			e.voices = e.listVoices()
		}
	}

	if e.out == nil {
		out, err := NewDeviceOutput(SampleRate, Channels)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tts.ErrUnsupported, err)
		}
		e.out = out
	}
	return e, nil
}

// FindBinary returns the path of the first synthesizer found in PATH.
func FindBinary() (string, error) {
	for _, name := range Binaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: espeak-ng not found in PATH", tts.ErrUnsupported)
}

// Speak starts synthesizing and playing u.
func (e *Engine) Speak(u *tts.Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		return tts.ErrEngineBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{u: u, ctx: ctx, cancel: cancel}
	e.current = j

	go e.run(j)
	return nil
}

// Cancel stops the in-flight utterance. Its canceled event is delivered from
// the playback goroutine.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := e.current
	if j == nil {
		return
	}
	e.current = nil
	if j.player != nil {
		j.player.Pause()
	}
	j.cancel()
}

// Pause holds playback. A pause during synthesis takes effect when playback
// would start.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := e.current
	if j == nil || j.paused {
		return
	}
	j.paused = true
	if j.player != nil {
		j.player.Pause()
	}
}

// Resume continues held playback.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	j := e.current
	if j == nil || !j.paused {
		return
	}
	j.paused = false
	if j.player != nil {
		j.player.Play()
	}
}

// Speaking reports whether an utterance is in flight.
func (e *Engine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Paused reports whether the in-flight utterance is held.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil && e.current.paused
}

// Voices returns the voices the synthesizer reported at startup.
func (e *Engine) Voices() []tts.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Voice(nil), e.voices...)
}

func (e *Engine) run(j *job) {
	defer j.cancel()

	data, err := e.synth(j.ctx, j.u)
	if err != nil {
		if j.ctx.Err() != nil {
			e.finish(j, tts.EventError, tts.ReasonCanceled, nil)
			return
		}
		e.finish(j, tts.EventError, tts.ReasonSynthesis, err)
		return
	}

	pcm, err := DecodeWAV(data)
	if err == nil {
		err = pcm.Check(SampleRate, Channels)
	}
	if err != nil {
		e.finish(j, tts.EventError, tts.ReasonSynthesis, err)
		return
	}

	e.mu.Lock()
	if j.ctx.Err() != nil {
		e.mu.Unlock()
		e.finish(j, tts.EventError, tts.ReasonCanceled, nil)
		return
	}
	p := e.out.NewPlayer(bytes.NewReader(pcm.Data))
	j.player = p
	if !j.paused {
		p.Play()
	}
	e.mu.Unlock()

	emit(j.u, tts.Event{Utterance: j.u.ID, Type: tts.EventStart})

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			e.finish(j, tts.EventError, tts.ReasonCanceled, nil)
			return
		case <-ticker.C:
			e.mu.Lock()
			canceled := j.ctx.Err() != nil
			drained := !j.paused && !p.IsPlaying()
			e.mu.Unlock()
			if canceled {
				e.finish(j, tts.EventError, tts.ReasonCanceled, nil)
				return
			}
			if !drained {
				continue
			}
			if err := p.Err(); err != nil {
				e.finish(j, tts.EventError, tts.ReasonAudio, err)
				return
			}
			e.finish(j, tts.EventEnd, "", nil)
			return
		}
	}
}

func (e *Engine) finish(j *job, typ tts.EventType, reason string, cause error) {
	e.mu.Lock()
	if e.current == j {
		e.current = nil
	}
	e.mu.Unlock()

	emit(j.u, tts.Event{Utterance: j.u.ID, Type: typ, Reason: reason, Err: cause})
}

func (e *Engine) runBinary(ctx context.Context, u *tts.Utterance) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.binary, Args(u)...)
	isolate(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("espeak failed: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, fmt.Errorf("espeak failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("espeak produced no audio")
	}
	return stdout.Bytes(), nil
}

func (e *Engine) listVoices() []tts.Voice {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	voices, err := ListVoices(ctx, e.binary)
	if err != nil {
		e.logger.Debug("Could not list voices", "binary", e.binary, "err", err)
		return nil
	}
	return voices
}

// ListVoices asks the synthesizer binary for its voices without opening an
// audio device.
func ListVoices(ctx context.Context, binary string) ([]tts.Voice, error) {
	out, err := exec.CommandContext(ctx, binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("unable to list voices: %w", err)
	}
	return ParseVoices(out), nil
}

func emit(u *tts.Utterance, ev tts.Event) {
	if u.OnEvent != nil {
		u.OnEvent(ev)
	}
}
