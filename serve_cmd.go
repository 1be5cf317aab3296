package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wptts/readaloud/internal/api"
	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/internal/store"
)

const (
	janitorInterval = time.Minute
	documentMaxAge  = 30 * time.Minute
	shutdownTimeout = 10 * time.Second
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only speech API",
		Long: paragraph(fmt.Sprintf("\n%s the read-only speech API for the posts in the local store. "+
			"Every route answers 404 until settings.rest_api_enabled is set.", keyword("Serve"))),
		Example: paragraph("readaloud serve\nreadaloud serve --addr :9000 --brand wpspeech"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd)
		},
	}
)

func serve(cmd *cobra.Command) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          config.AppName,
	})
	v := viper.GetViper()
	brand, err := config.LoadBrand(v)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return err
	}
	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	if srvCfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if cmd.Flags().Changed("addr") {
		srvCfg.Addr = serveAddr
	}
	if !settings.RESTAPIEnabled {
		logger.Warn("REST API is disabled, every route answers 404", "key", "settings.rest_api_enabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	posts, err := store.Open(ctx, srvCfg.DB)
	if err != nil {
		return err
	}
	defer posts.Close() //nolint:errcheck

	srv, err := api.New(brand, posts, settings, api.OptionsFromConfig(srvCfg, logger))
	if err != nil {
		return err
	}
	defer srv.Close()

	if viper.ConfigFileUsed() != "" {
		config.Watch(v, logger, srv.SetSettings)
	}
	go srv.Janitor(ctx, janitorInterval, documentMaxAge)

	hs := &http.Server{
		Addr:              srvCfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srvCfg.Addr, "namespace", brand.Namespace, "db", srvCfg.DB)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down server: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (overrides READALOUD_ADDR)")
}
