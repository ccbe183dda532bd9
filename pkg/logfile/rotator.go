package logfile

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/afero"
)

// Rotator rotates a log file family once the active file reaches a size.
//
// The family is path, path.1 ... path.N where a higher suffix is older.
// Rotation is best effort: a failed filesystem operation is logged as a
// warning, the rest of that rotation is skipped and the file simply keeps
// growing until the next check.
type Rotator struct {
	fs  afero.Fs
	log *slog.Logger
}

// NewRotator returns a Rotator working on fs. A nil log uses slog.Default().
func NewRotator(fs afero.Fs, log *slog.Logger) *Rotator {
	if log == nil {
		log = slog.Default()
	}
	return &Rotator{fs: fs, log: log}
}

// MaybeRotate rotates path if it exists and is at least maxSize bytes.
//
// With retention > 0, path.{retention} is removed, path.{i} is renamed to
// path.{i+1} for i = retention-1 down to 1, and path becomes path.1; the
// active file is then absent until the next append recreates it. With
// retention == 0 the file is truncated in place, keeping its identity for
// anyone holding it open.
//
// It reports whether the family was changed successfully.
func (r *Rotator) MaybeRotate(path string, maxSize datasize.ByteSize, retention int) bool {
	fi, err := r.fs.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warn("log rotation: stat failed", "path", path, "err", err)
		}
		return false
	}
	size := datasize.ByteSize(fi.Size())
	if size < maxSize {
		return false
	}

	if retention <= 0 {
		if err := r.truncate(path); err != nil {
			r.log.Warn("log rotation: truncate failed", "path", path, "err", err)
			return false
		}
		r.log.Info("log truncated", "path", path, "size", size.HumanReadable())
		return true
	}

	oldest := suffixed(path, retention)
	if err := r.fs.Remove(oldest); err != nil && !os.IsNotExist(err) {
		r.log.Warn("log rotation: evict failed", "path", oldest, "err", err)
		return false
	}
	for i := retention - 1; i >= 1; i-- {
		from, to := suffixed(path, i), suffixed(path, i+1)
		ok, err := afero.Exists(r.fs, from)
		if err != nil {
			r.log.Warn("log rotation: stat failed", "path", from, "err", err)
			return false
		}
		if !ok {
			continue
		}
		if err := r.fs.Rename(from, to); err != nil {
			r.log.Warn("log rotation: rename failed", "from", from, "to", to, "err", err)
			return false
		}
	}
	if err := r.fs.Rename(path, suffixed(path, 1)); err != nil {
		r.log.Warn("log rotation: rename failed", "from", path, "to", suffixed(path, 1), "err", err)
		return false
	}

	r.log.Info("log rotated", "path", path, "size", size.HumanReadable(), "retention", retention)
	return true
}

func (r *Rotator) truncate(path string) error {
	f, err := r.fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func suffixed(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}
