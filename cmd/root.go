// =============================================================================
// Promo Price Validator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (promoval)
//   ├── validateCmd (promoval validate)
//   └── versionCmd (promoval version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables per-row output when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "promoval",

	Short: "Promo Price Validator - Validate promotional-pricing files against business rules",

	Long: `Promo Price Validator is a CLI tool that checks batches of promotional
pricing records (CSV or XLSX) against a fixed set of business rules and
produces, per record, a pass/fail verdict plus the specific violations.

Checks include required fields, price logic, discount tolerance, date logic,
allowed-country membership, and cross-row detection of overlapping promotions
for the same product and country.

Example Usage:
  promoval validate                     # Validate all files in the input directory
  promoval validate --file promos.csv   # Validate a single file
  promoval validate --config ./my.yaml  # Use a custom configuration file`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Print each invalid row's findings to stdout",
	)
}
