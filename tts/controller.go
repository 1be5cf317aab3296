// Package tts provides the read-aloud playback core: the playback
// controller, its state machine, the engine contract and the speed selector.
package tts

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Params are the speech parameters applied to every utterance.
type Params struct {
	Rate   float64 // Speech rate multiplier (1.0 = normal)
	Pitch  float64 // Pitch (1.0 = normal)
	Volume float64 // Volume (0.0 to 1.0)
	Voice  string  // Preferred voice name, resolved at speak time
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Listener receives a state snapshot after every transition.
type Listener func(State)

// Controller drives a speech engine through a sentence sequence, one
// utterance at a time. It is the only component allowed to submit speech to
// its engine.
//
// All operations are safe for concurrent use. Listeners are invoked without
// the controller lock held, so they may call back into the controller.
type Controller struct {
	mu        sync.Mutex
	engine    Engine
	sentences []string
	machine   *StateMachine
	params    Params
	index     int

	current uint64 // ID of the in-flight utterance, 0 when none
	lastID  uint64
	seq     uint64

	listeners  []subscription
	nextListen int

	logger *log.Logger
}

type subscription struct {
	id int
	fn Listener
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger used for genuine engine errors.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates an idle controller for the given sentences.
func NewController(engine Engine, sentences []string, params Params, opts ...Option) *Controller {
	c := &Controller{
		engine:    engine,
		sentences: append([]string(nil), sentences...),
		machine:   NewStateMachine(),
		params:    params,
		logger:    log.Default(),
	}
	// every return to idle rewinds to the first sentence
	c.machine.OnEnter(StatusIdle, func() { c.index = 0 })
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TogglePlayPause resumes when paused, pauses when playing and starts reading
// from the current sentence when idle.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	switch c.machine.Current() {
	case StatusPaused:
		c.engine.Resume()
		c.machine.Transition(StatusPlaying)
	case StatusPlaying:
		c.engine.Pause()
		c.machine.Transition(StatusPaused)
	default:
		c.speakFromLocked(c.index)
	}
	c.publishLocked()
}

// SpeakFrom starts reading at the given sentence. An index past the end
// resets the player.
func (c *Controller) SpeakFrom(index int) {
	c.mu.Lock()
	c.speakFromLocked(index)
	c.publishLocked()
}

// Stop discards any in-flight utterance and resets the player. Calling it
// while idle is a no-op apart from notifying listeners.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.engine.Cancel()
	c.current = 0
	c.resetLocked()
	c.publishLocked()
}

// SetRate changes the speech rate. While playing or paused the current
// sentence is restarted at the new rate, which also resumes a paused player.
func (c *Controller) SetRate(rate float64) {
	c.mu.Lock()
	c.params.Rate = rate
	if c.machine.Current() != StatusIdle {
		c.engine.Cancel()
		c.current = 0
		c.speakFromLocked(c.index)
	}
	c.publishLocked()
}

// Notify feeds an engine event into the controller. Events for utterances
// other than the in-flight one are ignored.
func (c *Controller) Notify(ev Event) {
	c.mu.Lock()
	if c.current == 0 || ev.Utterance != c.current {
		c.mu.Unlock()
		return
	}

	switch ev.Type {
	case EventStart:
		c.mu.Unlock()
		return
	case EventEnd:
		c.index++
		if c.index < len(c.sentences) {
			c.speakFromLocked(c.index)
		} else {
			c.current = 0
			c.resetLocked()
		}
	case EventError:
		if err := ev.Failure(); !IsBenign(err) {
			c.logger.Warn("Speech engine error", "err", err, "sentence", c.index)
		}
		c.current = 0
		c.resetLocked()
	}
	c.publishLocked()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Params returns the current speech parameters.
func (c *Controller) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetParams replaces pitch, volume and voice. The rate is left untouched so a
// user speed choice survives configuration reloads; use SetRate for it. The
// new values apply from the next utterance.
func (c *Controller) SetParams(p Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Pitch = p.Pitch
	c.params.Volume = p.Volume
	c.params.Voice = p.Voice
}

// Subscribe registers a listener and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextListen++
	id := c.nextListen
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.listeners {
			if s.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) speakFromLocked(index int) {
	if index >= len(c.sentences) || index < 0 {
		c.engine.Cancel()
		c.current = 0
		c.resetLocked()
		return
	}

	c.index = index
	c.machine.Transition(StatusPlaying)

	c.lastID++
	id := c.lastID
	u := &Utterance{
		ID:      id,
		Text:    c.sentences[index],
		Rate:    c.params.Rate,
		Pitch:   c.params.Pitch,
		Volume:  c.params.Volume,
		Voice:   ResolveVoice(c.engine.Voices(), c.params.Voice),
		OnEvent: c.Notify,
	}

	// at most one utterance in flight
	c.engine.Cancel()
	c.current = id

	if err := c.engine.Speak(u); err != nil {
		c.logger.Warn("Speech engine rejected utterance", "sentence", index, "err", err)
		c.current = 0
		c.resetLocked()
	}
}

func (c *Controller) resetLocked() {
	c.machine.Transition(StatusIdle)
}

func (c *Controller) snapshotLocked() State {
	return State{
		Status:       c.machine.Current(),
		CurrentIndex: c.index,
		Total:        len(c.sentences),
		Rate:         c.params.Rate,
		Pitch:        c.params.Pitch,
		Volume:       c.params.Volume,
		Seq:          c.seq,
	}
}

// publishLocked releases the lock and notifies listeners.
func (c *Controller) publishLocked() {
	c.seq++
	s := c.snapshotLocked()
	listeners := make([]Listener, len(c.listeners))
	for i, l := range c.listeners {
		listeners[i] = l.fn
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
