// Package cmd contains all CLI commands for cfx.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of cfx.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cfx",
	Short: "Extract structured facts from C/C++ sources",
	Long: `cfx walks C/C++ source trees and extracts structured facts into
append-only JSONL files: named declarations with their literal source text,
enumerator value tables, and the nesting relations between record types
reachable through struct fields.

Repeated extraction is idempotent: a declaration seen through multiple files
or inclusion paths is emitted exactly once per output target.

Examples:
  cfx extract src/                       # Extract facts from a directory
  cfx extract --relations rel.jsonl f.c  # Override one output path
  cfx extract --index src/               # Also mirror facts into .cfx/facts.db
  cfx query --kind relation --name Foo   # Read mirrored facts back`,
	Version: Version,
}

// Execute adds all child commands to the root command and runs it.
// Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .cfx/config.yaml)")
}
