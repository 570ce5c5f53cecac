// Package main provides the entry point for the portal planner API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portal_agent",
	Short: "Student portal course planner",
	Long:  "Logs in to the university student portal, aggregates curriculum, grades and class schedules, and reports which courses the student may register for next.",
	// Usage is only useful for flag errors, which cobra reports on its own
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
