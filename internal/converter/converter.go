// =============================================================================
// Loyalty Card Report - Report Pipeline
// =============================================================================
//
// This module orchestrates one monthly run, from the shared source directory
// to the delivered and archived report.
//
// PIPELINE:
//   1. Derive the reporting period from the run date
//   2. Collect and normalize every source workbook
//   3. No data: notify the error recipients and stop
//   4. Group records by card/owner pair
//   5. Write the report workbook locally
//   6. Mail the report to the success recipients
//   7. Archive the sources and the report (skipped on dry runs)
//
// FAILURES:
//   A malformed source aborts the run before any output is produced; the
//   error recipients are told which file failed and the error is returned.
//   Store, write and delivery failures are returned wrapped, never retried.
//
// CONCURRENCY:
//   A run is sequential. A Pipeline must not be shared between goroutines.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/loyalty-card-report/internal/archive"
	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"github.com/ginjaninja78/loyalty-card-report/internal/ingest"
	"github.com/ginjaninja78/loyalty-card-report/internal/notify"
	"github.com/ginjaninja78/loyalty-card-report/internal/period"
	"github.com/ginjaninja78/loyalty-card-report/internal/store"
	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/ginjaninja78/loyalty-card-report/internal/xlsxparser"
	"github.com/ginjaninja78/loyalty-card-report/internal/xlsxwriter"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Status is the outcome of a run.
type Status string

const (
	// StatusOK means the report was delivered (and archived unless dry).
	StatusOK Status = "ok"

	// StatusNoData means no source held any record; the error notice was sent.
	StatusNoData Status = "no_data"

	// StatusMalformed means a source could not be read; the run was aborted.
	StatusMalformed Status = "malformed"

	// StatusFailed means a store, write or delivery step failed.
	StatusFailed Status = "failed"
)

// Result represents the outcome of one run.
type Result struct {
	Status Status

	// Period is the reporting month the run covered.
	Period period.Period

	// Files lists the source workbooks read, in listing order.
	Files []ingest.FileStats

	// Records is the size of the unified record set.
	Records int

	// Report is the local path of the written report, empty if none.
	Report string

	// Totals are the values written into the totals row.
	Totals types.Totals

	// Archive is set when archival ran, even if it failed part way.
	Archive *archive.Result

	// Duration is the wall time of the run.
	Duration time.Duration
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls one run.
type Options struct {
	// SourceDir is the source directory inside the store.
	SourceDir string

	// Location is how the source directory is named in notices, e.g. a UNC
	// path. Defaults to SourceDir.
	Location string

	Extension string
	Layout    xlsxparser.Layout

	// ReportPath is the run-local path of the report workbook.
	ReportPath string
	Report     xlsxwriter.Options

	LookbackDays  int
	Locale        string
	ArchivePrefix string

	ToSuccess []string
	ToError   []string

	// DryRun skips archival. Pair it with a log sink to avoid mailing.
	DryRun bool

	// Now overrides the run date. Zero means time.Now().
	Now time.Time
}

// OptionsFromConfig maps the loaded configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	layout := xlsxparser.DefaultLayout()
	layout.HeaderRow = cfg.Source.HeaderRow

	report := xlsxwriter.DefaultOptions()
	report.SheetName = cfg.Report.SheetName
	report.Caption = cfg.Report.Caption
	report.TotalsLabel = cfg.Report.TotalsLabel
	report.CurrencySuffix = cfg.Report.CurrencySuffix

	return Options{
		SourceDir:     cfg.Source.Dir,
		Extension:     cfg.Source.Extension,
		Layout:        layout,
		ReportPath:    cfg.Report.OutputFile,
		Report:        report,
		LookbackDays:  cfg.Archive.LookbackDays,
		Locale:        cfg.Archive.Locale,
		ArchivePrefix: cfg.Archive.Prefix,
		ToSuccess:     cfg.Mail.ToSuccess,
		ToError:       cfg.Mail.ToError,
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs the monthly report.
type Pipeline struct {
	store  store.Store
	sink   notify.Sink
	opts   Options
	logger *slog.Logger
}

// New creates a Pipeline over store s delivering through sink.
func New(s store.Store, sink notify.Sink, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == "" {
		opts.Location = opts.SourceDir
	}
	if opts.Extension == "" {
		opts.Extension = ingest.DefaultExtension
	}
	if opts.ArchivePrefix == "" {
		opts.ArchivePrefix = archive.DefaultPrefix
	}
	if opts.Locale == "" {
		opts.Locale = "ru"
	}
	return &Pipeline{store: s, sink: sink, opts: opts, logger: logger}
}

// Run executes one run. The returned Result is non-nil whenever the period
// could be derived, including on error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	now := p.opts.Now
	if now.IsZero() {
		now = start
	}

	// =========================================================================
	// STEP 1: PERIOD
	// =========================================================================

	per, err := period.Derive(now, p.opts.LookbackDays, p.opts.Locale)
	if err != nil {
		return nil, err
	}
	result := &Result{Status: StatusFailed, Period: per}
	defer func() { result.Duration = time.Since(start) }()

	p.logger.Info("Run started",
		slog.String("period", per.Label()),
		slog.String("source", p.opts.Location),
		slog.Bool("dry_run", p.opts.DryRun))

	// =========================================================================
	// STEP 2: COLLECT
	// =========================================================================

	collected, err := ingest.New(p.store, p.opts.Extension, p.opts.Layout, p.logger).Collect(p.opts.SourceDir)
	if err != nil {
		var malformed *xlsxparser.MalformedSourceError
		if errors.As(err, &malformed) {
			result.Status = StatusMalformed
			return result, p.notifyMalformed(ctx, malformed)
		}
		return result, err
	}
	result.Files = collected.Files
	result.Records = len(collected.Records)

	// =========================================================================
	// STEP 3: NO DATA
	// =========================================================================

	if len(collected.Records) == 0 {
		p.logger.Warn("No sales data for the period", slog.String("source", p.opts.Location))
		msg, err := notify.NoData(p.opts.Location, p.opts.ToError)
		if err != nil {
			return result, err
		}
		if err := p.sink.Send(ctx, msg); err != nil {
			return result, fmt.Errorf("failed to send no-data notice: %w", err)
		}
		result.Status = StatusNoData
		return result, nil
	}

	// =========================================================================
	// STEP 4: GROUP
	// =========================================================================

	grouped := Group(collected.Records)
	p.logger.Info("Grouped records",
		slog.Int("records", len(collected.Records)),
		slog.Int("pairs", len(grouped)))

	// =========================================================================
	// STEP 5: WRITE REPORT
	// =========================================================================

	totals, err := xlsxwriter.Write(p.opts.ReportPath, grouped, p.opts.Report)
	if err != nil {
		return result, err
	}
	result.Report = p.opts.ReportPath
	result.Totals = totals

	if input := types.SumRevenue(collected.Records); !input.Equal(totals.RevenueGrandTotal) {
		return result, fmt.Errorf("revenue not conserved: input %s, report %s", input, totals.RevenueGrandTotal)
	}
	p.logger.Info("Report written",
		slog.String("path", p.opts.ReportPath),
		slog.String("grand_total", totals.RevenueGrandTotal.StringFixed(2)),
		slog.Int("cards", totals.CardCount))

	// =========================================================================
	// STEP 6: DELIVER
	// =========================================================================

	msg, err := notify.Success(per, p.opts.ToSuccess, p.opts.ReportPath)
	if err != nil {
		return result, err
	}
	if err := p.sink.Send(ctx, msg); err != nil {
		return result, fmt.Errorf("failed to deliver report: %w", err)
	}

	// =========================================================================
	// STEP 7: ARCHIVE
	// =========================================================================

	if p.opts.DryRun {
		p.logger.Info("Dry run, archival skipped")
		result.Status = StatusOK
		return result, nil
	}

	archived, err := archive.New(p.store, p.opts.Extension, p.opts.ArchivePrefix, p.logger).
		Archive(p.opts.SourceDir, per, p.opts.ReportPath)
	result.Archive = archived
	if err != nil {
		return result, fmt.Errorf("report delivered but archival failed: %w", err)
	}

	result.Status = StatusOK
	p.logger.Info("Run finished",
		slog.Int("files", len(result.Files)),
		slog.String("archive", archived.Dir))
	return result, nil
}

// notifyMalformed tells the error recipients which source failed and
// returns the parse error, joined with any delivery failure.
func (p *Pipeline) notifyMalformed(ctx context.Context, malformed *xlsxparser.MalformedSourceError) error {
	p.logger.Error("Malformed source workbook",
		slog.String("file", malformed.Source),
		slog.String("reason", malformed.Reason))

	reason := malformed.Reason
	if malformed.Row >= 0 {
		reason = fmt.Sprintf("row %d: %s", malformed.Row+1, reason)
	}
	msg, err := notify.Malformed(p.opts.Location, malformed.Source, reason, p.opts.ToError)
	if err != nil {
		return errors.Join(malformed, err)
	}
	if err := p.sink.Send(ctx, msg); err != nil {
		return errors.Join(malformed, fmt.Errorf("failed to send malformed-source notice: %w", err))
	}
	return malformed
}
