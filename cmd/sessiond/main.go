// Command sessiond is a small HTTP service demonstrating the session stores:
// login, status, CSRF-protected profile updates and logout.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/server"
	"github.com/dmitrymomot/sessionkit/middleware"
	"github.com/dmitrymomot/sessionkit/pkg/randomid"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessiond",
		Short: "Cookie session demo service",
		Long: `sessiond serves a login/logout API backed by one of the session strategies:

  opaque  random id in the cookie, value in memory, Redis or PostgreSQL
  token   signed value in the cookie
  swt     signed value with a sliding expiry

Configuration is read from the environment (and an optional .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newKeygenCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}

			srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
			if err != nil {
				return errors.Join(err, a.Close())
			}
			return errors.Join(srv.Run(ctx, a.routes()), a.Close())
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	return cmd
}

func newKeygenCmd() *cobra.Command {
	var size, count int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print random signing secrets for SESSION_SECRETS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			for range count {
				key, err := randomid.Hex(size)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", randomid.DefaultLength, "number of random bytes per secret")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of secrets to print")
	return cmd
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithAttr(slog.String("service", cfg.AppName)),
		logger.WithLevel(cfg.LogLevel),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if cfg.LogFormat == "json" {
		opts = append(opts, logger.WithJSONFormatter())
	}
	return logger.New(opts...)
}
