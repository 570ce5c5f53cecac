package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portal-planner/internal/config"
	"github.com/jonathan/portal-planner/internal/eligibility"
	"github.com/jonathan/portal-planner/internal/observability"
	"github.com/jonathan/portal-planner/internal/pipeline"
	"github.com/jonathan/portal-planner/internal/schemas"
	"github.com/jonathan/portal-planner/internal/types"
)

var (
	resolveConfigPath string
	resolveInput      string
	resolveJSON       bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Recompute eligibility from a saved snapshot",
	Long:  "Reads a snapshot of catalog, grade ledger and schedules and runs classification, resolution and normalization offline. No network access is made.",
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveConfigPath, "config", "", "Path to a JSON or YAML config file")
	resolveCmd.Flags().StringVarP(&resolveInput, "in", "i", "", "Path to snapshot JSON file (required)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the full result as JSON")

	if err := resolveCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(resolveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(resolveInput)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := schemas.ValidateSnapshot(data); err != nil {
		return fmt.Errorf("invalid snapshot %s: %w", resolveInput, err)
	}

	snapshot, err := types.ParseSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	result, err := pipeline.Replay(snapshot, eligibility.Options{WithdrawnGrades: cfg.WithdrawnGrades})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resolveJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printer := observability.NewPrinter(out)
	printer.PrintResult(result)
	return nil
}
