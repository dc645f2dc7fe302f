// Package atomicfile implements the write-temp-then-rename durability idiom
// used for the catalog, the RID directory, the tombstone set, and every
// index document: a torn or half-written file is never visible to
// a reader because the rename only happens after the temp file has been
// fully written and closed (and, when fsync is enabled, successfully synced).
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"minidb/internal/dberrors"
)

// Write durably replaces path's contents with data. The temp file is named
// with a random UUID suffix rather than a PID or timestamp so that
// concurrent callers against a shared directory (as in tests that reopen a
// database mid-run) never collide on the temp name. When fsync is false the
// Sync call is skipped, trading the crash guarantee for throughput (the
// minidb.toml `fsync` setting).
func Write(path string, data []byte, fsync bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &dberrors.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp := path + "." + uuid.NewString() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &dberrors.IOError{Op: "create", Path: tmp, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return &dberrors.IOError{Op: "write", Path: tmp, Err: err}
	}
	if fsync {
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(tmp)
			return &dberrors.IOError{Op: "fsync", Path: tmp, Err: err}
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &dberrors.IOError{Op: "close", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &dberrors.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
