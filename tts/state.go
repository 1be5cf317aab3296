package tts

import (
	"fmt"
	"math"
)

// Status represents the playback status of a player.
type Status int

const (
	// StatusIdle indicates nothing is being read. It is the initial state and
	// the state every reset returns to.
	StatusIdle Status = iota
	// StatusPlaying indicates an utterance is being spoken.
	StatusPlaying
	// StatusPaused indicates the engine is holding the current utterance.
	StatusPaused
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// State is a snapshot of a player published to subscribers.
type State struct {
	Status       Status  // Current playback status
	CurrentIndex int     // Index of the sentence being read (0-based)
	Total        int     // Number of sentences
	Rate         float64 // Active speech rate
	Pitch        float64 // Active pitch
	Volume       float64 // Active volume

	// Seq increases with every published snapshot. Consumers receiving
	// snapshots from several goroutines drop those older than the last seen.
	Seq uint64
}

// IsActive returns true if the player is playing or paused.
func (s State) IsActive() bool {
	return s.Status == StatusPlaying || s.Status == StatusPaused
}

// CanStop returns true if the stop control should be enabled.
func (s State) CanStop() bool {
	return s.IsActive()
}

// Percent returns the progress as a rounded percentage of sentences read.
func (s State) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CurrentIndex) / float64(s.Total) * 100))
}

// Counter returns the "i / n" progress text. It is empty while idle.
func (s State) Counter() string {
	if s.Status == StatusIdle || s.Total <= 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", s.CurrentIndex, s.Total)
}

// StateMachine validates status transitions for a player.
type StateMachine struct {
	current     Status
	transitions map[Status][]Status
	onEnter     map[Status]func()
}

// NewStateMachine creates a state machine starting at StatusIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StatusIdle,
		transitions: map[Status][]Status{
			StatusIdle:    {StatusIdle, StatusPlaying},
			StatusPlaying: {StatusPlaying, StatusPaused, StatusIdle},
			StatusPaused:  {StatusPlaying, StatusIdle},
		},
		onEnter: make(map[Status]func()),
	}
}

// Can reports whether moving to the given status is allowed.
func (sm *StateMachine) Can(to Status) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves to the given status if allowed.
func (sm *StateMachine) Transition(to Status) bool {
	if !sm.Can(to) {
		return false
	}
	sm.current = to
	if fn, ok := sm.onEnter[to]; ok && fn != nil {
		fn()
	}
	return true
}

// Current returns the current status.
func (sm *StateMachine) Current() Status {
	return sm.current
}

// OnEnter registers a callback for entering a status.
func (sm *StateMachine) OnEnter(s Status, fn func()) {
	sm.onEnter[s] = fn
}
