package ui

import "github.com/wptts/readaloud/internal/config"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Note is shown in the status bar, usually the file name.
	Note string

	// Markdown is rendered in the pager. PlainText is what is read aloud and
	// what the copy key puts on the clipboard.
	Markdown  string
	PlainText string

	Settings config.Settings

	// Unsupported replaces the player controls with the unsupported notice.
	Unsupported bool

	// For debugging the UI
	GlamourEnabled bool `env:"READALOUD_ENABLE_GLAMOUR" envDefault:"true"`
}
