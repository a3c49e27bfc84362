// =============================================================================
// Promo Price Validator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Promo Price Validator CLI. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   promoval validate       - Validate promotion files in the input directory
//   promoval version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : The validation engine and its collaborators
//   - pkg/        : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/promo-validator/cmd"
)

// main simply calls Execute from the cmd package, which initializes and
// runs the Cobra CLI.
func main() {
	cmd.Execute()
}
