package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# brand: "wp-tts" or "wpspeech". Selects the REST namespace and codes.
brand: "wp-tts"
# speech engine used by listen and voices: "espeak", "piper" or "mock"
engine: "espeak"

# Piper neural voices, used when engine is "piper"
piper:
  binary: "piper"
  # model: "~/.local/share/piper/en_US-lessac-medium.onnx"
  speaker: 0

settings:
  # preferred voice name, empty for the engine default
  voice_name: ""
  # 0.5 to 2.0
  speech_rate: 1.0
  # 0.0 to 2.0
  pitch: 1.0
  # 0.0 to 1.0
  volume: 1.0

  show_progress_bar: true
  show_speed_control: true
  # hex color of the play button
  button_color: "#d60017"
  # "before" or "after" the article
  button_position: "before"
  # mini player while the primary player is scrolled out of view
  sticky_player: true

  # serve answers 404 on every route until this is enabled
  rest_api_enabled: false
  enabled_post_types:
    - post

  i18n:
    listen: "Listen"
    pause: "Pause"
    resume: "Resume"
    unsupported: "Text-to-speech is not supported in this browser."
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the readaloud config file",
	Long:    paragraph(fmt.Sprintf("\n%s the readaloud config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("readaloud config\nreadaloud config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("readaloud", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
