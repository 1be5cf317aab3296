package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
)

// AppName names config, data and log directories.
const AppName = "readaloud"

// ConfigDirs returns the directories searched for readaloud.yml, most
// specific first.
func ConfigDirs() ([]string, error) {
	scope := gap.NewScope(gap.User, AppName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, AppName)}, dirs...)
	}
	if c := os.Getenv("READALOUD_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

// DataPath returns the path of a file in the user data directory.
func DataPath(name string) (string, error) {
	p, err := gap.NewScope(gap.User, AppName).DataPath(name)
	if err != nil {
		return "", fmt.Errorf("could not find data directory: %w", err)
	}
	return p, nil
}

// LogPath returns the path of a file in the user log directory.
func LogPath(name string) (string, error) {
	p, err := gap.NewScope(gap.User, AppName).LogPath(name)
	if err != nil {
		return "", fmt.Errorf("could not find log directory: %w", err)
	}
	return p, nil
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		p = path
	}
	return os.ExpandEnv(p)
}
