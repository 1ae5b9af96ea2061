package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OutputWriteError reports an image that could not be written. Path is the
// intended destination file.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}

// WriteFile renders into a temp file next to the destination and renames it
// into place. The temp file is closed and removed on every error path, so a
// failed render never leaves a partial image behind. It returns the final path.
func WriteFile(dir, name string, render func(w io.Writer) error) (string, error) {
	if dir == "" {
		dir = "."
	}
	finalPath := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}

	tmp, err := os.CreateTemp(dir, name+".tmp.*")
	if err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := render(tmp); err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", &OutputWriteError{Path: finalPath, Err: err}
	}
	ok = true
	return finalPath, nil
}
