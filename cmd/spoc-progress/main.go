// Package main is the entry point for spoc-progress.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spoc-progress/internal/app"
	"spoc-progress/pkg/config"
	"spoc-progress/pkg/services"
)

var version = "dev" // set via ldflags at build time

var rootCmd = &cobra.Command{
	Use:   "spoc-progress",
	Short: "Replay video progress updates for a SPOC course item",
	Long: `spoc-progress reads a request copied from the browser developer tools,
extracts the session token, cookie and content identifiers, and reports
video progress to the SPOC backend either at playback speed or at once.

Settings are read from the environment: SPOC_BASE_URL, SPOC_ORIGIN,
REQUEST_TIMEOUT, GLOBAL_PROXY, DISABLE_SSL, TLS_FINGERPRINT, LOG_LEVEL, LOG_JSON.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		application := app.New(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		return application.Run(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !isReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// isReported reports whether the operator has already been shown a message
// for err.
func isReported(err error) bool {
	return errors.Is(err, app.ErrMissingParams) ||
		errors.Is(err, app.ErrEmptyLearnerID) ||
		errors.Is(err, app.ErrInvalidNumber) ||
		errors.Is(err, app.ErrInvalidMode) ||
		errors.Is(err, app.ErrInvalidSettings) ||
		errors.Is(err, services.ErrInitFailed)
}
