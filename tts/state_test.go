package tts

import "testing"

// TestStatusString tests the String() method for Status.
func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusIdle, "idle"},
		{StatusPlaying, "playing"},
		{StatusPaused, "paused"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("Status.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateIsActive(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusIdle, false},
		{StatusPlaying, true},
		{StatusPaused, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			s := State{Status: tt.status}
			if s.IsActive() != tt.expected {
				t.Errorf("IsActive() = %v, want %v", s.IsActive(), tt.expected)
			}
			if s.CanStop() != tt.expected {
				t.Errorf("CanStop() = %v, want %v", s.CanStop(), tt.expected)
			}
		})
	}
}

func TestStateProgress(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		percent int
		counter string
	}{
		{"idle", State{Status: StatusIdle, Total: 3}, 0, ""},
		{"no sentences", State{Status: StatusPlaying}, 0, ""},
		{"first", State{Status: StatusPlaying, CurrentIndex: 0, Total: 3}, 0, "0 / 3"},
		{"one third", State{Status: StatusPlaying, CurrentIndex: 1, Total: 3}, 33, "1 / 3"},
		{"two thirds", State{Status: StatusPaused, CurrentIndex: 2, Total: 3}, 67, "2 / 3"},
		{"done", State{Status: StatusPlaying, CurrentIndex: 4, Total: 4}, 100, "4 / 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Percent(); got != tt.percent {
				t.Errorf("Percent() = %d, want %d", got, tt.percent)
			}
			if got := tt.state.Counter(); got != tt.counter {
				t.Errorf("Counter() = %q, want %q", got, tt.counter)
			}
		})
	}
}

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []Status
		valid []bool
	}{
		{
			name:  "play pause resume stop",
			path:  []Status{StatusPlaying, StatusPaused, StatusPlaying, StatusIdle},
			valid: []bool{true, true, true, true},
		},
		{
			name:  "cannot pause from idle",
			path:  []Status{StatusPaused},
			valid: []bool{false},
		},
		{
			name:  "stop is reentrant",
			path:  []Status{StatusIdle, StatusIdle},
			valid: []bool{true, true},
		},
		{
			name:  "paused cannot re-enter paused",
			path:  []Status{StatusPlaying, StatusPaused, StatusPaused},
			valid: []bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for i, to := range tt.path {
				if got := sm.Transition(to); got != tt.valid[i] {
					t.Fatalf("step %d: Transition(%s) = %v, want %v", i, to, got, tt.valid[i])
				}
			}
		})
	}
}

func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()
	entered := 0
	sm.OnEnter(StatusPlaying, func() { entered++ })

	sm.Transition(StatusPlaying)
	sm.Transition(StatusPaused)
	sm.Transition(StatusPlaying)

	if entered != 2 {
		t.Errorf("expected 2 enter callbacks, got %d", entered)
	}
	if sm.Current() != StatusPlaying {
		t.Errorf("expected playing, got %s", sm.Current())
	}
}
