// Package mock provides a scripted speech engine for tests and demos.
package mock

import (
	"strings"
	"sync"
	"time"

	"github.com/wptts/readaloud/tts"
)

// Options configures the mock engine.
type Options struct {
	// Auto finishes utterances on its own after a duration derived from
	// WordsPerMinute. Without it, tests drive completion with Finish and Fail.
	Auto bool

	// WordsPerMinute is the simulated speaking speed at rate 1.0.
	WordsPerMinute int
}

// DefaultOptions returns options for a manually driven engine.
func DefaultOptions() Options {
	return Options{WordsPerMinute: 150}
}

// Engine implements tts.Engine without producing any sound.
type Engine struct {
	mu sync.Mutex

	opts    Options
	voices  []tts.Voice
	current *tts.Utterance
	paused  bool
	spoken  []tts.Utterance

	speakErr error

	timer     *time.Timer
	deadline  time.Time
	remaining time.Duration

	cancels int
	pauses  int
	resumes int
}

// New creates a mock engine.
func New(opts Options) *Engine {
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = 150
	}
	return &Engine{
		opts: opts,
		voices: []tts.Voice{
			{Name: "Mock Voice 1", Language: "en-US", Default: true},
			{Name: "Mock Voice 2", Language: "en-GB"},
			{Name: "Mock Voice 3", Language: "de-DE"},
		},
	}
}

// Speak records the utterance and, in auto mode, schedules its completion.
func (e *Engine) Speak(u *tts.Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.speakErr != nil {
		return e.speakErr
	}
	if e.current != nil {
		return tts.ErrEngineBusy
	}

	e.current = u
	e.paused = false
	e.spoken = append(e.spoken, *u)

	if e.opts.Auto {
		go emit(u, tts.Event{Utterance: u.ID, Type: tts.EventStart})
		e.schedule(u, e.duration(u))
	}
	return nil
}

// Cancel discards the in-flight utterance and reports it as canceled.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancels++
	e.stopTimer()
	e.paused = false
	if u := e.current; u != nil {
		e.current = nil
		go emit(u, tts.Event{Utterance: u.ID, Type: tts.EventError, Reason: tts.ReasonCanceled})
	}
}

// Pause holds the in-flight utterance.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pauses++
	if e.current == nil || e.paused {
		return
	}
	e.paused = true
	if e.timer != nil {
		e.remaining = time.Until(e.deadline)
		e.stopTimer()
	}
}

// Resume continues a held utterance.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resumes++
	if e.current == nil || !e.paused {
		return
	}
	e.paused = false
	if e.opts.Auto {
		e.schedule(e.current, e.remaining)
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
	return e.paused
}

// Voices returns the mock voices.
func (e *Engine) Voices() []tts.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Voice(nil), e.voices...)
}

// Test control methods

// SetVoices replaces the voice list. An empty list simulates an engine that
// has not discovered its voices yet.
func (e *Engine) SetVoices(voices []tts.Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = voices
}

// SetSpeakError makes every following Speak call fail with err.
func (e *Engine) SetSpeakError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErr = err
}

// Finish completes the in-flight utterance naturally. It reports false when
// nothing is in flight.
func (e *Engine) Finish() bool {
	e.mu.Lock()
	u := e.current
	if u == nil {
		e.mu.Unlock()
		return false
	}
	e.current = nil
	e.paused = false
	e.stopTimer()
	e.mu.Unlock()

	emit(u, tts.Event{Utterance: u.ID, Type: tts.EventEnd})
	return true
}

// Fail aborts the in-flight utterance with the given reason.
func (e *Engine) Fail(reason string) bool {
	e.mu.Lock()
	u := e.current
	if u == nil {
		e.mu.Unlock()
		return false
	}
	e.current = nil
	e.paused = false
	e.stopTimer()
	e.mu.Unlock()

	emit(u, tts.Event{Utterance: u.ID, Type: tts.EventError, Reason: reason})
	return true
}

// Current returns a copy of the in-flight utterance.
func (e *Engine) Current() (tts.Utterance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return tts.Utterance{}, false
	}
	return *e.current, true
}

// Spoken returns every utterance submitted so far.
func (e *Engine) Spoken() []tts.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Utterance(nil), e.spoken...)
}

// Counts returns how often Cancel, Pause and Resume were called.
func (e *Engine) Counts() (cancels, pauses, resumes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels, e.pauses, e.resumes
}

func (e *Engine) duration(u *tts.Utterance) time.Duration {
	words := len(strings.Fields(u.Text))
	if words == 0 {
		words = 1
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	minutes := float64(words) / (float64(e.opts.WordsPerMinute) * rate)
	return time.Duration(minutes * float64(time.Minute))
}

func (e *Engine) schedule(u *tts.Utterance, d time.Duration) {
	e.deadline = time.Now().Add(d)
	e.timer = time.AfterFunc(d, func() {
		e.mu.Lock()
		if e.current != u || e.paused {
			e.mu.Unlock()
			return
		}
		e.current = nil
		e.timer = nil
		e.mu.Unlock()

		emit(u, tts.Event{Utterance: u.ID, Type: tts.EventEnd})
	})
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func emit(u *tts.Utterance, ev tts.Event) {
	if u.OnEvent != nil {
		u.OnEvent(ev)
	}
}
