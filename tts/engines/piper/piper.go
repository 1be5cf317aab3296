// Package piper synthesizes speech with the Piper neural text-to-speech
// binary. Playback, pause and cancellation are handled by the espeak engine,
// which accepts any synthesizer producing WAV at its sample rate.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/wptts/readaloud/tts"
	"github.com/wptts/readaloud/tts/engines/espeak"
)

// Config locates the binary and the voice model.
type Config struct {
	Binary  string
	Model   string // path to the .onnx model; its .onnx.json must sit next to it
	Speaker int    // speaker id for multi-speaker models
}

// New returns an engine that speaks through Piper. It fails with
// tts.ErrUnsupported when the binary or the model cannot be found.
func New(c Config, opts ...espeak.Option) (*espeak.Engine, error) {
	bin, err := exec.LookPath(c.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: piper not found: %v", tts.ErrUnsupported, err)
	}
	if _, err := os.Stat(c.Model); err != nil {
		return nil, fmt.Errorf("%w: piper model: %v", tts.ErrUnsupported, err)
	}
	c.Binary = bin

	opts = append(opts,
		espeak.WithSynthesizer(c.Synthesize),
		espeak.WithVoices([]tts.Voice{c.Voice()}),
	)
	return espeak.New(opts...)
}

// Voice describes the single voice of the model, named after the model file.
func (c Config) Voice() tts.Voice {
	name := strings.TrimSuffix(filepath.Base(c.Model), ".onnx")
	lang := name
	if i := strings.IndexByte(name, '-'); i > 0 {
		lang = name[:i]
	}
	return tts.Voice{
		Name:     name,
		Language: strings.ReplaceAll(lang, "_", "-"),
		Default:  true,
	}
}

// Args returns the command line that synthesizes one utterance read from
// stdin to WAV on stdout. Piper has no pitch or volume control; the rate
// maps to the inverse length scale.
func (c Config) Args(u *tts.Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	args := []string{
		"--model", c.Model,
		"--output_file", "-",
		"--length_scale", strconv.FormatFloat(1/rate, 'f', 3, 64),
	}
	if c.Speaker > 0 {
		args = append(args, "--speaker", strconv.Itoa(c.Speaker))
	}
	return args
}

// Synthesize runs Piper for u. It is an espeak.Synthesizer.
func (c Config) Synthesize(ctx context.Context, u *tts.Utterance) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Binary, c.Args(u)...)
	cmd.Stdin = strings.NewReader(u.Text + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debug("Piper failed", "stderr", strings.TrimSpace(stderr.String()))
		return nil, fmt.Errorf("piper failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("piper produced no audio")
	}
	return stdout.Bytes(), nil
}
