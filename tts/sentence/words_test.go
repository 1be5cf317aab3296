package sentence

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"one two three four five", 5},
		{"", 0},
		{"well-known don't", 2},
		{"3 apples and 42 pears", 3},
		{"-leading dash", 2},
		{"Hello, world! How's it going?", 5},
		{"Über café", 2},
		{"rock ' n ' roll", 3},
		{"'tis rock-'n'-roll", 2},
		{"naïve café", 3},
		{"trailing- -- '' -", 1},
		{"über", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CountWords(tt.input); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEstimateDuration(t *testing.T) {
	text150 := ""
	for i := 0; i < 150; i++ {
		text150 += "word "
	}

	tests := []struct {
		name string
		text string
		rate float64
		want int
	}{
		{"one minute at normal rate", text150, 1, 60},
		{"double speed", text150, 2, 30},
		{"half speed", text150, 0.5, 120},
		{"zero rate falls back", text150, 0, 60},
		{"negative rate falls back", text150, -1, 60},
		{"five words", "one two three four five", 1, 2},
		{"empty", "", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDuration(tt.text, tt.rate); got != tt.want {
				t.Errorf("EstimateDuration() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrimWords(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"a b c d", 2, "a b..."},
		{"a b", 2, "a b"},
		{"  spaced\n out  ", 5, "spaced out"},
	}

	for _, tt := range tests {
		if got := TrimWords(tt.text, tt.n, "..."); got != tt.want {
			t.Errorf("TrimWords(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}
