package config

import (
	"math"
	"regexp"
	"strings"

	"github.com/wptts/readaloud/tts"
	"github.com/wptts/readaloud/tts/sticky"
)

// Button positions relative to the article.
const (
	PositionBefore = "before"
	PositionAfter  = "after"
)

// DefaultButtonColor is the player accent color.
const DefaultButtonColor = "#d60017"

// Settings are the reader-facing options.
type Settings struct {
	VoiceName        string   `mapstructure:"voice_name" yaml:"voice_name"`
	SpeechRate       float64  `mapstructure:"speech_rate" yaml:"speech_rate"`
	Pitch            float64  `mapstructure:"pitch" yaml:"pitch"`
	Volume           float64  `mapstructure:"volume" yaml:"volume"`
	ShowProgressBar  bool     `mapstructure:"show_progress_bar" yaml:"show_progress_bar"`
	ShowSpeedControl bool     `mapstructure:"show_speed_control" yaml:"show_speed_control"`
	ButtonColor      string   `mapstructure:"button_color" yaml:"button_color"`
	ButtonPosition   string   `mapstructure:"button_position" yaml:"button_position"`
	StickyPlayer     bool     `mapstructure:"sticky_player" yaml:"sticky_player"`
	RESTAPIEnabled   bool     `mapstructure:"rest_api_enabled" yaml:"rest_api_enabled"`
	EnabledPostTypes []string `mapstructure:"enabled_post_types" yaml:"enabled_post_types"`
	I18n             I18n     `mapstructure:"i18n" yaml:"i18n"`
}

// I18n holds the player labels.
type I18n struct {
	Listen      string `mapstructure:"listen" yaml:"listen"`
	Pause       string `mapstructure:"pause" yaml:"pause"`
	Resume      string `mapstructure:"resume" yaml:"resume"`
	Unsupported string `mapstructure:"unsupported" yaml:"unsupported"`
}

// DefaultSettings returns Settings with the stock values.
func DefaultSettings() Settings {
	return Settings{
		SpeechRate:       1.0,
		Pitch:            1.0,
		Volume:           1.0,
		ShowProgressBar:  true,
		ShowSpeedControl: true,
		ButtonColor:      DefaultButtonColor,
		ButtonPosition:   PositionBefore,
		StickyPlayer:     true,
		RESTAPIEnabled:   false,
		EnabledPostTypes: []string{"post"},
		I18n: I18n{
			Listen:      "Listen",
			Pause:       "Pause",
			Resume:      "Resume",
			Unsupported: "Text-to-speech is not supported in this browser.",
		},
	}
}

var (
	hexColor   = regexp.MustCompile(`^#([A-Fa-f0-9]{3}){1,2}$`)
	invalidKey = regexp.MustCompile(`[^a-z0-9_\-]`)
)

// Sanitize clamps numbers into range and replaces invalid values with their
// defaults. Unlike validation it never fails.
func (s *Settings) Sanitize() {
	d := DefaultSettings()

	s.VoiceName = strings.TrimSpace(s.VoiceName)
	s.SpeechRate = clamp(s.SpeechRate, tts.MinSpeed, tts.MaxSpeed, d.SpeechRate)
	s.Pitch = clamp(s.Pitch, 0, 2, d.Pitch)
	s.Volume = clamp(s.Volume, 0, 1, d.Volume)

	if !hexColor.MatchString(s.ButtonColor) {
		s.ButtonColor = d.ButtonColor
	}
	if s.ButtonPosition != PositionBefore && s.ButtonPosition != PositionAfter {
		s.ButtonPosition = d.ButtonPosition
	}

	types := make([]string, 0, len(s.EnabledPostTypes))
	for _, t := range s.EnabledPostTypes {
		if k := SanitizeKey(t); k != "" {
			types = append(types, k)
		}
	}
	s.EnabledPostTypes = types

	if s.I18n.Listen == "" {
		s.I18n.Listen = d.I18n.Listen
	}
	if s.I18n.Pause == "" {
		s.I18n.Pause = d.I18n.Pause
	}
	if s.I18n.Resume == "" {
		s.I18n.Resume = d.I18n.Resume
	}
	if s.I18n.Unsupported == "" {
		s.I18n.Unsupported = d.I18n.Unsupported
	}
}

// SanitizeKey lower-cases a slug and drops everything but letters, digits,
// dashes and underscores.
func SanitizeKey(key string) string {
	return invalidKey.ReplaceAllString(strings.ToLower(key), "")
}

// PostTypeEnabled reports whether reading is enabled for postType.
func (s Settings) PostTypeEnabled(postType string) bool {
	for _, t := range s.EnabledPostTypes {
		if t == postType {
			return true
		}
	}
	return false
}

// Params returns the speech parameters for the playback controller.
func (s Settings) Params() tts.Params {
	return tts.Params{
		Rate:   s.SpeechRate,
		Pitch:  s.Pitch,
		Volume: s.Volume,
		Voice:  s.VoiceName,
	}
}

// Labels returns the player labels.
func (s Settings) Labels() sticky.Labels {
	return sticky.Labels{Listen: s.I18n.Listen, Pause: s.I18n.Pause, Resume: s.I18n.Resume}
}

func clamp(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}
