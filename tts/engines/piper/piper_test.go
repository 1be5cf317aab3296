package piper

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wptts/readaloud/tts"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		rate    float64
		expects []string
	}{
		{
			name:    "normal rate",
			config:  Config{Model: "en.onnx"},
			rate:    1,
			expects: []string{"--model", "en.onnx", "--output_file", "-", "--length_scale", "1.000"},
		},
		{
			name:    "double rate halves the length",
			config:  Config{Model: "en.onnx"},
			rate:    2,
			expects: []string{"--model", "en.onnx", "--output_file", "-", "--length_scale", "0.500"},
		},
		{
			name:    "zero rate is normal",
			config:  Config{Model: "en.onnx"},
			rate:    0,
			expects: []string{"--model", "en.onnx", "--output_file", "-", "--length_scale", "1.000"},
		},
		{
			name:   "speaker",
			config: Config{Model: "multi.onnx", Speaker: 4},
			rate:   0.75,
			expects: []string{
				"--model", "multi.onnx", "--output_file", "-", "--length_scale", "1.333",
				"--speaker", "4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.Args(&tts.Utterance{Text: "Hello.", Rate: tt.rate})
			if !reflect.DeepEqual(got, tt.expects) {
				t.Errorf("Args() = %v, want %v", got, tt.expects)
			}
		})
	}
}

func TestVoice(t *testing.T) {
	v := Config{Model: "/voices/en_US-lessac-medium.onnx"}.Voice()
	if v.Name != "en_US-lessac-medium" {
		t.Errorf("expected name from model file, got %q", v.Name)
	}
	if v.Language != "en-US" {
		t.Errorf("expected language en-US, got %q", v.Language)
	}
	if !v.Default {
		t.Error("expected the only voice to be the default")
	}
}

func TestNewUnsupported(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing binary", func(t *testing.T) {
		_, err := New(Config{Binary: filepath.Join(dir, "no-such-piper"), Model: "x.onnx"})
		if !errors.Is(err, tts.ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		bin := filepath.Join(dir, "piper")
		if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil { //nolint:gosec
			t.Fatal(err)
		}
		_, err := New(Config{Binary: bin, Model: filepath.Join(dir, "missing.onnx")})
		if !errors.Is(err, tts.ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})
}
