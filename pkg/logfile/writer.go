// Package logfile appends steal samples to a plain text log and rotates it
// by size. All file access goes through an afero.Fs so the rotation chain
// can be exercised in memory.
package logfile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
)

// Header is the first line of every log file.
const Header = "# timestamp iso8601 | steal_pct | run_avg_steal_pct | run_peak_steal_pct | samples"

// TimeLayout is ISO-8601 with a numeric UTC offset; unlike time.RFC3339
// it never collapses the offset to "Z".
const TimeLayout = "2006-01-02T15:04:05-07:00"

// Entry is one sample line.
type Entry struct {
	Time    time.Time
	Steal   float64
	Avg     float64
	Peak    float64
	Samples int
}

// String renders the entry without the trailing newline.
func (e Entry) String() string {
	return fmt.Sprintf("%s | %.2f | %.2f | %.2f | %d",
		e.Time.Format(TimeLayout), e.Steal, e.Avg, e.Peak, e.Samples)
}

// Writer appends entries to the active log file.
type Writer struct {
	fs   afero.Fs
	path string
}

// NewWriter returns a Writer for path on fs.
func NewWriter(fs afero.Fs, path string) *Writer {
	return &Writer{fs: fs, path: path}
}

// Path returns the active log file path.
func (w *Writer) Path() string { return w.path }

// EnsureHeader creates the file with the header line if it does not exist.
// An existing file is left untouched, whatever its content.
func (w *Writer) EnsureHeader() error {
	f, err := w.fs.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create %s: %w", w.path, err)
	}
	if _, err := f.Write([]byte(Header + "\n")); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header %s: %w", w.path, err)
	}
	return f.Close()
}

// Append writes e as one newline-terminated line with a single Write on a
// file opened for append, then closes it. Readers tailing the file never
// see half of one sample glued to the next.
func (w *Writer) Append(e Entry) error {
	if err := w.EnsureHeader(); err != nil {
		return err
	}
	f, err := w.fs.OpenFile(w.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.path, err)
	}
	if _, err := f.Write([]byte(e.String() + "\n")); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", w.path, err)
	}
	return f.Close()
}
