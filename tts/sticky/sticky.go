// Package sticky keeps a compact mini-player on screen while playback is
// active and the primary player has been scrolled out of view.
package sticky

import (
	"sync"

	"github.com/wptts/readaloud/tts"
)

// Player is the part of the playback controller the mini-player drives.
type Player interface {
	State() tts.State
	Subscribe(tts.Listener) func()
	TogglePlayPause()
	Stop()
}

// Labels are the localized button titles.
type Labels struct {
	Listen string
	Pause  string
	Resume string
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{Listen: "Listen", Pause: "Pause", Resume: "Resume"}
}

// Icon is the glyph shown on the play/pause button.
type Icon int

const (
	IconPlay Icon = iota
	IconPause
)

// View is everything a player rendering needs.
type View struct {
	Visible bool
	Icon    Icon
	Title   string
	Wave    bool // speaking animation
	Percent int
	Counter string
	Status  tts.Status

	// Stoppable enables the stop control.
	Stoppable bool
}

// Present derives the button and progress view for a state. Visible is left
// false; the primary player is always shown and the mini-player sets it.
func Present(s tts.State, l Labels) View {
	v := View{
		Icon:    IconPlay,
		Title:   l.Listen,
		Percent: s.Percent(),
		Counter: s.Counter(),
		Status:  s.Status,

		Stoppable: s.CanStop(),
	}
	switch s.Status {
	case tts.StatusPlaying:
		v.Icon = IconPause
		v.Title = l.Pause
		v.Wave = true
	case tts.StatusPaused:
		v.Title = l.Resume
	}
	return v
}

// Presence decides mini-player visibility from the playback status and the
// primary player's viewport intersection.
type Presence struct {
	mu             sync.Mutex
	player         Player
	enabled        bool
	labels         Labels
	primaryVisible bool
	state          tts.State
	last           View
	published      bool
	listeners      []func(View)
	unsubscribe    func()
}

// New creates a presence controller. A disabled one never becomes visible
// and does not observe the player.
func New(player Player, enabled bool, labels Labels) *Presence {
	p := &Presence{
		player:         player,
		enabled:        enabled,
		labels:         labels,
		primaryVisible: true,
		state:          player.State(),
	}
	if enabled {
		p.unsubscribe = player.Subscribe(p.onState)
	}
	return p
}

// Close stops observing the player.
func (p *Presence) Close() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// SetPrimaryVisible records whether any part of the primary player is inside
// the viewport.
func (p *Presence) SetPrimaryVisible(visible bool) {
	p.mu.Lock()
	p.primaryVisible = visible
	p.publishLocked()
}

// SetLabels replaces the button titles, e.g. after a settings reload.
func (p *Presence) SetLabels(l Labels) {
	p.mu.Lock()
	p.labels = l
	p.publishLocked()
}

// Visible reports whether the mini-player is shown.
func (p *Presence) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibleLocked()
}

// View returns the current mini-player view.
func (p *Presence) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// OnChange registers a callback invoked whenever the view changes.
func (p *Presence) OnChange(fn func(View)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Toggle forwards to the player.
func (p *Presence) Toggle() { p.player.TogglePlayPause() }

// Stop forwards to the player.
func (p *Presence) Stop() { p.player.Stop() }

func (p *Presence) onState(s tts.State) {
	p.mu.Lock()
	if s.Seq != 0 && s.Seq < p.state.Seq {
		p.mu.Unlock()
		return
	}
	p.state = s
	p.publishLocked()
}

func (p *Presence) visibleLocked() bool {
	return p.enabled && p.state.IsActive() && !p.primaryVisible
}

func (p *Presence) viewLocked() View {
	v := Present(p.state, p.labels)
	v.Visible = p.visibleLocked()
	return v
}

// publishLocked releases the lock and notifies listeners if the view changed.
func (p *Presence) publishLocked() {
	v := p.viewLocked()
	if p.published && v == p.last {
		p.mu.Unlock()
		return
	}
	p.last = v
	p.published = true
	listeners := make([]func(View), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}
