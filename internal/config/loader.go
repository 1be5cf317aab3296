package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Top level configuration keys.
const (
	KeyBrand    = "brand"
	KeyEngine   = "engine"
	KeySettings = "settings"
)

// Engines selectable with the engine key.
var Engines = []string{"espeak", "mock", "piper"}

// EnvPrefix prefixes every environment override, e.g.
// READALOUD_SETTINGS_SPEECH_RATE.
const EnvPrefix = "readaloud"

// SetDefaults registers every known key with its default so file, env and
// flag values merge over them.
func SetDefaults(v *viper.Viper) {
	d := DefaultSettings()

	v.SetDefault(KeyBrand, DefaultBrand)
	v.SetDefault(KeyEngine, Engines[0])
	v.SetDefault("piper.binary", "piper")
	v.SetDefault("piper.model", "")
	v.SetDefault("piper.speaker", 0)

	v.SetDefault("settings.voice_name", d.VoiceName)
	v.SetDefault("settings.speech_rate", d.SpeechRate)
	v.SetDefault("settings.pitch", d.Pitch)
	v.SetDefault("settings.volume", d.Volume)
	v.SetDefault("settings.show_progress_bar", d.ShowProgressBar)
	v.SetDefault("settings.show_speed_control", d.ShowSpeedControl)
	v.SetDefault("settings.button_color", d.ButtonColor)
	v.SetDefault("settings.button_position", d.ButtonPosition)
	v.SetDefault("settings.sticky_player", d.StickyPlayer)
	v.SetDefault("settings.rest_api_enabled", d.RESTAPIEnabled)
	v.SetDefault("settings.enabled_post_types", d.EnabledPostTypes)

	v.SetDefault("settings.i18n.listen", d.I18n.Listen)
	v.SetDefault("settings.i18n.pause", d.I18n.Pause)
	v.SetDefault("settings.i18n.resume", d.I18n.Resume)
	v.SetDefault("settings.i18n.unsupported", d.I18n.Unsupported)
}

// BindEnv enables READALOUD_* environment overrides for nested keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadSettings reads the settings block. Missing keys keep their defaults
// and out-of-range values are sanitized.
func LoadSettings(v *viper.Viper) (Settings, error) {
	// Unmarshal works on AllSettings, which sees env overrides of nested
	// keys; UnmarshalKey does not.
	cfg := struct {
		Settings Settings `mapstructure:"settings"`
	}{Settings: DefaultSettings()}

	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultSettings(), fmt.Errorf("unable to parse settings: %w", err)
	}
	cfg.Settings.Sanitize()
	return cfg.Settings, nil
}

// LoadBrand resolves the configured brand.
func LoadBrand(v *viper.Viper) (Brand, error) {
	return LookupBrand(v.GetString(KeyBrand))
}

// LoadEngine returns the configured engine name.
func LoadEngine(v *viper.Viper) (string, error) {
	name := strings.ToLower(v.GetString(KeyEngine))
	for _, e := range Engines {
		if e == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("invalid engine %q: must be one of %v", name, Engines)
}

// Watch re-reads the settings whenever the config file changes and hands
// the result to fn. Unparseable files are logged and skipped.
func Watch(v *viper.Viper, logger *log.Logger, fn func(Settings)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s, err := LoadSettings(v)
		if err != nil {
			logger.Warn("Could not reload settings", "path", e.Name, "err", err)
			return
		}
		logger.Info("Reloaded settings", "path", e.Name)
		fn(s)
	})
	v.WatchConfig()
}
