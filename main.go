// Package main provides the entry point for the readaloud CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wptts/readaloud/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	brandSlug  string
	engineName string

	rootCmd = &cobra.Command{
		Use:   "readaloud",
		Short: "Read articles aloud, in the terminal or over HTTP",
		Long: paragraph(
			fmt.Sprintf("\nRead articles %s, in the terminal or over HTTP.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

// validateOptions loads an explicitly given config file and checks the
// top level keys every command depends on.
func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(config.ExpandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// the config file must stay editable even when it is invalid
	switch cmd.Name() {
	case "config", "man":
		return nil
	}

	if _, err := config.LoadBrand(viper.GetViper()); err != nil {
		return err
	}
	if _, err := config.LoadEngine(viper.GetViper()); err != nil {
		return err
	}
	if _, err := config.LoadSettings(viper.GetViper()); err != nil {
		return err
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVar(&brandSlug, "brand", config.DefaultBrand, fmt.Sprintf("brand, one of %v", config.BrandSlugs()))
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", config.Engines[0], fmt.Sprintf("speech engine, one of %v", config.Engines))

	// Config bindings
	_ = viper.BindPFlag(config.KeyBrand, rootCmd.PersistentFlags().Lookup("brand"))
	_ = viper.BindPFlag(config.KeyEngine, rootCmd.PersistentFlags().Lookup("engine"))

	rootCmd.AddCommand(listenCmd, serveCmd, importCmd, voicesCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	dirs, err := config.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(config.AppName)
	viper.SetConfigType("yaml")
	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], config.AppName+".yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Warn("Could not read default configuration", "err", err)
	}
}
