package tts

import "testing"

func TestResolveVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Samantha", Language: "en-US", Default: true},
		{Name: "Daniel", Language: "en-GB"},
	}

	tests := []struct {
		name     string
		voices   []Voice
		lookup   string
		expected string
	}{
		{"exact match", voices, "Daniel", "Daniel"},
		{"empty name uses default", voices, "", ""},
		{"unknown name uses default", voices, "Alex", ""},
		{"case sensitive", voices, "daniel", ""},
		{"no voices yet", nil, "Daniel", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ResolveVoice(tt.voices, tt.lookup)
			if tt.expected == "" {
				if v != nil {
					t.Errorf("expected default voice, got %q", v.Name)
				}
				return
			}
			if v == nil || v.Name != tt.expected {
				t.Errorf("expected %q, got %v", tt.expected, v)
			}
		})
	}
}

func TestEventTypeString(t *testing.T) {
	tests := map[EventType]string{
		EventStart:    "start",
		EventEnd:      "end",
		EventError:    "error",
		EventType(99): "unknown",
	}
	for et, want := range tests {
		if got := et.String(); got != want {
			t.Errorf("EventType(%d).String() = %q, want %q", et, got, want)
		}
	}
}
