package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/portal-planner/internal/observability"
	"github.com/jonathan/portal-planner/internal/pipeline"
	"github.com/jonathan/portal-planner/internal/portal"
	"github.com/jonathan/portal-planner/internal/schemas"
)

var (
	fetchConfigPath string
	fetchUsername   string
	fetchPassword   string
	fetchJSON       bool
	fetchValidate   bool
	fetchVerbose    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Log in and print the aggregated course plan",
	Long: `Logs in to the portal, scrapes curriculum, grades and schedules, and prints the courses the student may take next.

Credentials default to the PORTAL_USERNAME and PORTAL_PASSWORD environment variables.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchConfigPath, "config", "", "Path to a JSON or YAML config file")
	fetchCmd.Flags().StringVarP(&fetchUsername, "username", "u", "", "Portal user id (defaults to PORTAL_USERNAME)")
	fetchCmd.Flags().StringVarP(&fetchPassword, "password", "p", "", "Portal password (defaults to PORTAL_PASSWORD)")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the full result as JSON")
	fetchCmd.Flags().BoolVar(&fetchValidate, "validate", false, "Validate the result against the result schema")
	fetchCmd.Flags().BoolVarP(&fetchVerbose, "verbose", "v", false, "Print progress messages to stderr")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	creds := portal.Credentials{Username: fetchUsername, Password: fetchPassword}
	if creds.Username == "" {
		creds.Username = os.Getenv("PORTAL_USERNAME")
	}
	if creds.Password == "" {
		creds.Password = os.Getenv("PORTAL_PASSWORD")
	}

	cfg, logger, err := loadRuntime(fetchConfigPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.PortalOptions{Config: cfg, Logger: logger}
	if fetchVerbose {
		opts.OnProgress = func(ev pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", ev.Step, ev.Message)
		}
	}

	result, err := pipeline.AggregatePortal(ctx, creds, opts)
	if err != nil {
		return err
	}

	if fetchValidate {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if err := schemas.ValidateResult(data); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printer := observability.NewPrinter(out)
	printer.PrintResult(result)
	return nil
}
