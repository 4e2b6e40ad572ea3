package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/show-manager/internal/config"
	"github.com/Digital-Shane/show-manager/internal/log"
	"github.com/Digital-Shane/show-manager/internal/metrics"
	"github.com/Digital-Shane/show-manager/internal/repository"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// setupOptions selects what a command needs opened before it runs.
type setupOptions struct {
	// tui sends log output to the log file so it cannot draw over the screen.
	tui bool
	// repository opens the process-wide repository.
	repository bool
	// journal records bookmark changes into an undo session.
	journal bool
}

// env is everything a command needs once settings are loaded.
type env struct {
	cfg     *config.Config
	logger  zerolog.Logger
	repo    *repository.Repository
	closers []func() error
}

// setup loads settings, applies flag overrides and opens what opts asks
// for. Callers must Close the env.
func setup(cmd *cobra.Command, opts setupOptions) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if catalogName != "" {
		cfg.Catalog = catalogName
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.MetricsAddress = metricsAddr
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	if opts.tui {
		logger, closer, err := config.NewFileLogger(cfg.LogFile, level)
		if err != nil {
			e.logger = zerolog.Nop()
		} else {
			e.logger = logger
			e.closers = append(e.closers, closer.Close)
		}
	} else {
		e.logger = config.NewConsoleLogger(cmd.ErrOrStderr(), level)
	}

	log.SetLogger(e.logger)
	log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays)

	if cfg.MetricsAddress != "" {
		e.startMetrics(cfg.MetricsAddress)
	}

	if opts.repository {
		rc, err := cfg.Repository(&e.logger)
		if err != nil {
			e.Close()
			return nil, err
		}
		repo, err := repository.Init(rc)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.repo = repo
		e.closers = append(e.closers, repository.Shutdown)

		if opts.journal {
			args := append(commandWords(cmd), cmd.Flags().Args()...)
			if err := log.StartSession(args[0], args[1:]); err != nil {
				e.logger.Warn().Err(err).Msg("Journal unavailable")
			} else {
				repo.SetRecorder(log.Recorder{})
				e.closers = append(e.closers, func() error {
					repo.SetRecorder(nil)
					return log.EndSession()
				})
			}
		}
	}

	return e, nil
}

// commandWords returns the command path without the binary name, e.g.
// ["bookmark", "add"]. The root command maps to "tui".
func commandWords(cmd *cobra.Command) []string {
	words := strings.Fields(cmd.CommandPath())
	if len(words) <= 1 {
		return []string{"tui"}
	}
	return words[1:]
}

func (e *env) startMetrics(address string) {
	srv := metrics.NewHTTPServer(address)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error().Err(err).Str("address", srv.Addr).Msg("Metrics server stopped")
		}
	}()
	e.logger.Info().Str("address", srv.Addr).Msg("Serving metrics")

	e.closers = append(e.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// Close releases everything setup opened, newest first.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultError turns a failed repository result into a command error.
func resultError(what string, status repository.Status, err error) error {
	if err == nil {
		return fmt.Errorf("%s failed (%s)", what, status)
	}
	return fmt.Errorf("%s failed (%s): %w", what, status, err)
}
