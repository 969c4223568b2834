// =============================================================================
// Loyalty Card Report - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (loyalty-report)
//   ├── runCmd     (loyalty-report run)
//   ├── inspectCmd (loyalty-report inspect <file>)
//   └── versionCmd (loyalty-report version)
//
// The root command owns the global flags (--config, --verbose) and the
// shared configuration and logger setup used by the subcommands.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "loyalty-report",
	Short: "Monthly loyalty card sales report for the service stations",
	Long: `loyalty-report collects the monthly loyalty card sales exports that the
service stations drop into a shared folder, merges them into one report
grouped by card and owner, mails it, and archives the consumed exports.

Example Usage:
  loyalty-report run                         # Build, mail and archive the report
  loyalty-report run --dry-run               # Build the report, log the mail, keep sources
  loyalty-report run --date 2026-10-03       # Run as if today were 3 October 2026
  loyalty-report inspect station-7.xlsx      # Show what one export normalizes to`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads the configuration and applies --verbose.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
