package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	return v
}

// TestLoadSettings tests that file values merge over defaults.
func TestLoadSettings(t *testing.T) {
	v := newViper(t, `
settings:
  speech_rate: 1.5
  sticky_player: false
  enabled_post_types: [post, page]
  i18n:
    listen: "Hören"
`)

	s, err := LoadSettings(v)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.SpeechRate != 1.5 {
		t.Errorf("expected rate 1.5, got %v", s.SpeechRate)
	}
	if s.StickyPlayer {
		t.Error("expected sticky player disabled")
	}
	if len(s.EnabledPostTypes) != 2 {
		t.Errorf("expected 2 post types, got %v", s.EnabledPostTypes)
	}
	if s.I18n.Listen != "Hören" || s.I18n.Pause != "Pause" {
		t.Errorf("unexpected labels %+v", s.I18n)
	}

	// untouched keys keep their defaults
	if s.Pitch != 1 || s.ButtonColor != DefaultButtonColor || !s.ShowProgressBar {
		t.Errorf("defaults lost: %+v", s)
	}
}

// TestLoadSettingsSanitizes tests clamping of file values.
func TestLoadSettingsSanitizes(t *testing.T) {
	v := newViper(t, `
settings:
  speech_rate: 9
  volume: -2
  button_color: "blue"
`)

	s, err := LoadSettings(v)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.SpeechRate != 2 || s.Volume != 0 || s.ButtonColor != DefaultButtonColor {
		t.Errorf("values not sanitized: %+v", s)
	}
}

func TestLoadSettingsEmptyFile(t *testing.T) {
	s, err := LoadSettings(newViper(t, ""))
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if s.SpeechRate != 1 || s.I18n.Unsupported == "" {
		t.Errorf("expected defaults, got %+v", s)
	}
}

func TestLoadSettingsEnvOverride(t *testing.T) {
	t.Setenv("READALOUD_SETTINGS_REST_API_ENABLED", "true")

	v := newViper(t, "")
	BindEnv(v)

	s, err := LoadSettings(v)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if !s.RESTAPIEnabled {
		t.Error("expected environment to enable the REST API")
	}
}

func TestLoadEngine(t *testing.T) {
	tests := []struct {
		yaml    string
		want    string
		wantErr bool
	}{
		{"", "espeak", false},
		{"engine: Mock", "mock", false},
		{"engine: piper", "piper", false},
		{"engine: google", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.yaml, func(t *testing.T) {
			got, err := LoadEngine(newViper(t, tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LoadEngine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadBrand(t *testing.T) {
	b, err := LoadBrand(newViper(t, "brand: wpspeech"))
	if err != nil {
		t.Fatalf("LoadBrand failed: %v", err)
	}
	if b.Namespace != "wpspeech/v1" {
		t.Errorf("unexpected namespace %q", b.Namespace)
	}
}

func TestLoadPiper(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    PiperConfig
		wantErr bool
	}{
		{
			name: "model only",
			yaml: "piper:\n  model: /voices/en_US-lessac-medium.onnx",
			want: PiperConfig{Binary: "piper", Model: "/voices/en_US-lessac-medium.onnx"},
		},
		{
			name: "all keys",
			yaml: "piper:\n  binary: /opt/piper/piper\n  model: /voices/de.onnx\n  speaker: 3",
			want: PiperConfig{Binary: "/opt/piper/piper", Model: "/voices/de.onnx", Speaker: 3},
		},
		{name: "missing model", yaml: "engine: piper", wantErr: true},
		{name: "negative speaker", yaml: "piper:\n  model: m.onnx\n  speaker: -1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadPiper(newViper(t, tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadPiper() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("LoadPiper() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
