package backup

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

// writeAtomic writes a backup file via temp-file-and-rename so a crash
// mid-write never leaves a truncated backup behind. Filesystem errors
// map to the storage taxonomy: full disk is QuotaExceeded, everything
// else AccessDenied.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return kerrors.Wrap(kerrors.ErrAccessDenied, "empty backup path")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return classify(err, "creating backup temp file")
	}

	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return classify(err, "writing backup temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		return classify(err, "setting backup file permissions")
	}
	if err := tmp.Sync(); err != nil {
		return classify(err, "syncing backup temp file")
	}
	if err := tmp.Close(); err != nil {
		return classify(err, "closing backup temp file")
	}
	closed = true

	if err := os.Rename(tmpPath, path); err != nil {
		return classify(err, "renaming backup temp file")
	}

	// Best effort directory sync for rename durability.
	if dirFile, err := os.Open(dir); err == nil { // #nosec G304 -- dir is derived from validated path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}

	return nil
}

func classify(err error, msg string) error {
	if errors.Is(err, syscall.ENOSPC) {
		return kerrors.Wrap(kerrors.ErrQuotaExceeded, "%s", msg)
	}
	return kerrors.Wrap(kerrors.ErrAccessDenied, "%s", msg)
}
