package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resmod",
		Short: "resmod - Resource Model Derivation Engine",
		Long: `resmod derives canonical, provider-agnostic resource schemas from
cloud provider model documents.

Features:
  - Smithy JSON AST and cloud resource schema document ingestion
  - Cycle-safe reference resolution with mixin trait merging
  - Attribute extraction with mutability constraints
  - Enum normalization with ergonomic alias resolution
  - SQLite-backed schema registry`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newDeriveCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newResourcesCommand())
	rootCmd.AddCommand(newAliasCommand())

	return rootCmd
}
