// =============================================================================
// Loyalty Card Report - Ingestion Aggregator
// =============================================================================
//
// The aggregator discovers every source workbook in the shared source
// directory, runs the normalizer over each one in listing order, and
// concatenates the results into one unified record set.
//
// RESULT:
//   An empty record set is a valid outcome. It means no station delivered a
//   report for the period and triggers the error notification upstream.
//
// FAILURES:
//   Store access failures are returned wrapped and are not retried.
//   Malformed workbooks abort the whole collection.
//
// =============================================================================

package ingest

import (
	"fmt"
	"log/slog"

	"github.com/ginjaninja78/loyalty-card-report/internal/store"
	"github.com/ginjaninja78/loyalty-card-report/internal/types"
	"github.com/ginjaninja78/loyalty-card-report/internal/xlsxparser"
)

// DefaultExtension is the tracked source file extension.
const DefaultExtension = ".xlsx"

// FileStats describes what was read from one source workbook.
type FileStats struct {
	Name    string
	Records int
}

// Result is the unified record set plus per-file statistics.
type Result struct {
	Records []types.SalesRecord
	Files   []FileStats
}

// Aggregator collects records from a store directory.
type Aggregator struct {
	store     store.Store
	extension string
	layout    xlsxparser.Layout
	logger    *slog.Logger
}

// New creates an Aggregator. An empty extension means DefaultExtension.
func New(s store.Store, extension string, layout xlsxparser.Layout, logger *slog.Logger) *Aggregator {
	if extension == "" {
		extension = DefaultExtension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: s, extension: extension, layout: layout, logger: logger}
}

// SourceFiles lists the tracked source files in dir, in listing order.
func (a *Aggregator) SourceFiles(dir string) ([]string, error) {
	return TrackedFiles(a.store, dir, a.extension)
}

// Collect normalizes every tracked file in dir and concatenates the records.
func (a *Aggregator) Collect(dir string) (*Result, error) {
	names, err := a.SourceFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{Records: []types.SalesRecord{}}
	for _, name := range names {
		records, err := a.readFile(store.Join(dir, name), name)
		if err != nil {
			return nil, err
		}

		a.logger.Info("Read source file",
			slog.String("file", name),
			slog.Int("records", len(records)))

		result.Records = append(result.Records, records...)
		result.Files = append(result.Files, FileStats{Name: name, Records: len(records)})
	}

	return result, nil
}

// readFile opens one workbook from the store and normalizes it.
func (a *Aggregator) readFile(filePath, name string) ([]types.SalesRecord, error) {
	r, err := a.store.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file %s: %w", name, err)
	}
	defer r.Close()

	return xlsxparser.Normalize(r, name, a.layout)
}

// TrackedFiles returns the names of regular files in dir that carry ext.
func TrackedFiles(s store.Store, dir, ext string) ([]string, error) {
	entries, err := s.List(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list source directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir && store.HasExtension(entry.Name, ext) {
			names = append(names, entry.Name)
		}
	}
	return names, nil
}
