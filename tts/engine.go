package tts

// Engine is the platform speech-synthesis capability. There is one engine per
// process and it must only be driven by a single Controller.
//
// Engines report progress through the Utterance's OnEvent callback. Events
// must be delivered asynchronously: never from inside Speak or Cancel.
type Engine interface {
	// Speak submits an utterance. A non-nil error is treated as a genuine
	// synthesis failure.
	Speak(u *Utterance) error

	// Cancel discards the in-flight utterance, if any.
	Cancel()

	// Pause holds the in-flight utterance.
	Pause()

	// Resume continues a held utterance.
	Resume()

	// Speaking reports whether an utterance is in flight.
	Speaking() bool

	// Paused reports whether the in-flight utterance is held.
	Paused() bool

	// Voices returns the voices currently known to the engine. The list may
	// be empty while the engine is still discovering voices.
	Voices() []Voice
}

// Voice describes an engine voice.
type Voice struct {
	Name     string // Name used for matching the configured voice
	Language string // Language tag, e.g. "en-US"
	Default  bool   // Engine default voice
}

// Utterance is one speech request for a single sentence.
type Utterance struct {
	ID     uint64
	Text   string
	Rate   float64
	Pitch  float64
	Volume float64

	// Voice is nil when the engine default voice should be used.
	Voice *Voice

	// OnEvent receives start, end and error notifications for this
	// utterance.
	OnEvent func(Event)
}

// EventType identifies an engine notification.
type EventType int

const (
	// EventStart is sent when the engine starts speaking an utterance.
	EventStart EventType = iota
	// EventEnd is sent when an utterance finishes naturally.
	EventEnd
	// EventError is sent when an utterance fails or is discarded.
	EventError
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Error reasons reported by engines.
const (
	ReasonCanceled    = "canceled"
	ReasonInterrupted = "interrupted"
	ReasonSynthesis   = "synthesis-failed"
	ReasonAudio       = "audio-busy"
)

// Event is an engine notification about an utterance.
type Event struct {
	Utterance uint64
	Type      EventType
	Reason    string // Set for EventError
	Err       error  // Cause of an EventError, when the engine knows it
}

// Failure returns the error an EventError reports, or nil for other events.
func (e Event) Failure() error {
	if e.Type != EventError {
		return nil
	}
	return &EngineError{Utterance: e.Utterance, Reason: e.Reason, Err: e.Err}
}

// ResolveVoice finds a voice by exact name. It returns nil when name is
// empty or no voice matches, meaning the engine default should be used.
func ResolveVoice(voices []Voice, name string) *Voice {
	if name == "" {
		return nil
	}
	for i := range voices {
		if voices[i].Name == name {
			v := voices[i]
			return &v
		}
	}
	return nil
}
