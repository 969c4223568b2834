// =============================================================================
// Loyalty Card Report - Archival
// =============================================================================
//
// After the report has been delivered, the consumed source workbooks and the
// produced report are moved into a dated holding directory under the source
// directory, e.g.
//
//   <source>/Отчёты за Сентябрь 2026/station-1.xlsx
//   <source>/Отчёты за Сентябрь 2026/Продажи по картам лояльности СТО.xlsx
//
// ARCHIVAL STRATEGY:
//   - Source files are moved in two phases: copy into the archive, then
//     remove from the source. The store has no rename across directories.
//   - The local report is copied; the local file is left in place.
//   - Afterwards the source directory holds no tracked files, so the next
//     run cannot pick up already-archived data.
//
// PARTIAL FAILURE:
//   The first failing file stops the loop. The returned *MoveError names the
//   file and the phase; PhaseRemove means the file now exists in both places.
//
// =============================================================================

package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/loyalty-card-report/internal/ingest"
	"github.com/ginjaninja78/loyalty-card-report/internal/period"
	"github.com/ginjaninja78/loyalty-card-report/internal/store"
)

// DefaultPrefix is prepended to the period label to name the archive directory.
const DefaultPrefix = "Отчёты за "

// =============================================================================
// ERRORS
// =============================================================================

// Phase is the step of a two-phase move.
type Phase string

const (
	// PhaseCopy failed: the file is still only in the source directory.
	PhaseCopy Phase = "copy"

	// PhaseRemove failed: the file was copied but not deleted from the source.
	PhaseRemove Phase = "remove"
)

// MoveError reports a file that could not be moved into the archive.
type MoveError struct {
	File  string
	Phase Phase
	Err   error
}

func (e *MoveError) Error() string {
	if e.Phase == PhaseRemove {
		return fmt.Sprintf("archive %s: copied but not removed from source: %v", e.File, e.Err)
	}
	return fmt.Sprintf("archive %s: %s failed: %v", e.File, e.Phase, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ARCHIVER
// =============================================================================

// Result describes what an archival pass did.
type Result struct {
	// Dir is the archive directory, relative to the store root.
	Dir string

	// Moved lists the source files fully moved, in order.
	Moved []string

	// Report is the archived path of the report, empty if it was not copied.
	Report string
}

// Archiver moves consumed files into the period directory.
type Archiver struct {
	store     store.Store
	extension string
	prefix    string
	logger    *slog.Logger
}

// New creates an Archiver.
func New(s store.Store, extension, prefix string, logger *slog.Logger) *Archiver {
	if extension == "" {
		extension = ingest.DefaultExtension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{store: s, extension: extension, prefix: prefix, logger: logger}
}

// Dir returns the archive directory for p under sourceDir.
func (a *Archiver) Dir(sourceDir string, p period.Period) string {
	return store.Join(sourceDir, a.prefix+p.Label())
}

// Archive moves every tracked file of sourceDir into the period directory,
// then copies localReport there. An empty localReport skips the copy.
// The returned Result is valid even when an error is returned.
func (a *Archiver) Archive(sourceDir string, p period.Period, localReport string) (*Result, error) {
	result := &Result{Dir: a.Dir(sourceDir, p)}

	if err := a.store.Mkdir(result.Dir); err != nil {
		return result, fmt.Errorf("failed to create archive directory %s: %w", result.Dir, err)
	}

	names, err := ingest.TrackedFiles(a.store, sourceDir, a.extension)
	if err != nil {
		return result, err
	}

	for _, name := range names {
		if err := a.move(store.Join(sourceDir, name), store.Join(result.Dir, name), name); err != nil {
			a.logger.Error("Archival stopped",
				slog.String("file", name),
				slog.Int("moved", len(result.Moved)),
				slog.Int("pending", len(names)-len(result.Moved)),
				slog.Any("error", err))
			return result, err
		}
		result.Moved = append(result.Moved, name)
	}

	if localReport != "" {
		dst := store.Join(result.Dir, filepath.Base(localReport))
		if err := a.uploadLocal(localReport, dst); err != nil {
			return result, err
		}
		result.Report = dst
	}

	a.logger.Info("Archived period",
		slog.String("dir", result.Dir),
		slog.Int("files", len(result.Moved)),
		slog.String("report", result.Report))

	return result, nil
}

// move copies src to dst, then removes src.
func (a *Archiver) move(src, dst, name string) error {
	if err := store.Copy(a.store, src, dst); err != nil {
		return &MoveError{File: name, Phase: PhaseCopy, Err: err}
	}
	if err := a.store.Remove(src); err != nil {
		return &MoveError{File: name, Phase: PhaseRemove, Err: err}
	}

	a.logger.Debug("Moved file", slog.String("src", src), slog.String("dst", dst))
	return nil
}

// uploadLocal copies a run-local file into the store.
func (a *Archiver) uploadLocal(localPath, dst string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %w", localPath, err)
	}
	defer f.Close()

	if err := store.Upload(a.store, f, dst); err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}
	return nil
}
