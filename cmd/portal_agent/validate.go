package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portal-planner/internal/schemas"
)

const (
	kindResult   = "result"
	kindSnapshot = "snapshot"
)

var (
	validateKind   string
	validateSchema string
	validateInput  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a result or snapshot file against its JSON schema",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateKind, "kind", kindResult, "Document kind: result or snapshot")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to a schema file (overrides --kind)")
	validateCmd.Flags().StringVar(&validateInput, "json", "", "Path to JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if validateSchema != "" {
		err = schemas.ValidateJSON(validateSchema, validateInput)
	} else {
		err = validateEmbedded(validateKind, validateInput)
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation failed\n%s", validationErr.Error())
		return fmt.Errorf("%s does not match the %s schema", validateInput, validateKind)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}

func validateEmbedded(kind, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("JSON file not found: %w", err)
	}
	switch kind {
	case kindResult:
		return schemas.ValidateResult(data)
	case kindSnapshot:
		return schemas.ValidateSnapshot(data)
	default:
		return fmt.Errorf("unknown kind %q (want %s or %s)", kind, kindResult, kindSnapshot)
	}
}
