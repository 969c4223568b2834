// =============================================================================
// Loyalty Card Report - Run Command
// =============================================================================
//
// This file defines the 'run' command, which performs one monthly run.
//
// COMMAND USAGE:
//   loyalty-report run [flags]
//
// FLAGS:
//   --dry-run : Build the report, log the mail instead of sending it and
//               leave the source directory untouched
//   --date    : Run date as YYYY-MM-DD, used to derive the period
//
// EXIT STATUS:
//   0 when the report was delivered or the no-data notice was sent,
//   1 on a malformed source or any store, write or delivery failure.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"github.com/ginjaninja78/loyalty-card-report/internal/converter"
	"github.com/ginjaninja78/loyalty-card-report/internal/logger"
	"github.com/ginjaninja78/loyalty-card-report/internal/notify"
	"github.com/ginjaninja78/loyalty-card-report/internal/store"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var dryRun bool

var runDate string

// =============================================================================
// RUN COMMAND DEFINITION
// =============================================================================

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build, mail and archive the monthly report",
	Long: `The run command reads every station export from the source directory,
merges them into one report grouped by card number and owner, mails the
report and moves the exports into the archive directory of the period.

When the source directory holds no data, a notice naming the directory is
mailed to the error recipients and nothing else happens.

When an export cannot be read, the run stops before producing anything and
the error recipients are told which file failed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Log the mail instead of sending it and skip archival",
	)

	runCmd.Flags().StringVar(
		&runDate,
		"date",
		"",
		"Run date as YYYY-MM-DD (default today)",
	)
}

// =============================================================================
// MAIN RUN FUNCTION
// =============================================================================

func runReport(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Close()

	runLog, _ := log.WithRun()

	opts := converter.OptionsFromConfig(cfg)
	opts.DryRun = dryRun
	if runDate != "" {
		opts.Now, err = time.ParseInLocation("2006-01-02", runDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", runDate, err)
		}
	}

	st, location, err := openStore(cfg.Source)
	if err != nil {
		runLog.Error("Source store unavailable", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			runLog.Warn("Failed to close source store", slog.Any("error", err))
		}
	}()
	opts.Location = location

	var sink notify.Sink = notify.NewLogSink(runLog)
	if !dryRun {
		if sink, err = notify.NewSink(cfg.Mail, runLog); err != nil {
			return err
		}
	}

	result, err := converter.New(st, sink, opts, runLog).Run(ctx)
	if result != nil {
		printSummary(result)
	}
	if err != nil {
		runLog.Error("Run failed", slog.Any("error", err))
		return err
	}
	return nil
}

// openStore connects to the configured source and returns it with the
// location shown in notices.
func openStore(cfg config.SourceConfig) (store.Store, string, error) {
	switch cfg.Backend {
	case "local":
		location := filepath.Join(cfg.LocalRoot, filepath.FromSlash(cfg.Dir))
		return store.NewLocalStore(cfg.LocalRoot), location, nil
	case "smb":
		s, err := store.DialSMB(store.SMBConfig{
			Host:        cfg.Host,
			Port:        cfg.Port,
			Share:       cfg.Share,
			User:        cfg.User,
			Password:    cfg.Password,
			Domain:      cfg.Domain,
			DialTimeout: cfg.DialTimeout,
		})
		if err != nil {
			return nil, "", err
		}
		location := fmt.Sprintf(`\\%s\%s\%s`, cfg.Host, cfg.Share, strings.ReplaceAll(cfg.Dir, "/", `\`))
		return s, location, nil
	}
	return nil, "", fmt.Errorf("unknown source backend %q", cfg.Backend)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func printSummary(r *converter.Result) {
	fmt.Println()
	fmt.Println("=== Loyalty Card Report ===")
	fmt.Printf("Period:   %s\n", r.Period.Label())
	fmt.Printf("Status:   %s\n", r.Status)
	fmt.Printf("Files:    %d\n", len(r.Files))
	for _, f := range r.Files {
		fmt.Printf("  %-40s %d records\n", f.Name, f.Records)
	}
	fmt.Printf("Records:  %d\n", r.Records)
	if r.Report != "" {
		fmt.Printf("Report:   %s\n", r.Report)
		fmt.Printf("Total:    %s\n", r.Totals.RevenueGrandTotal.StringFixed(2))
		fmt.Printf("Cards:    %d\n", r.Totals.CardCount)
	}
	if r.Archive != nil {
		fmt.Printf("Archive:  %s (%d files)\n", r.Archive.Dir, len(r.Archive.Moved))
	}
	fmt.Printf("Duration: %s\n", r.Duration.Round(time.Millisecond))
}
