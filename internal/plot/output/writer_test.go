package output

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile_WritesAndRenames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")

	path, err := WriteFile(dir, "chart.png", func(w io.Writer) error {
		_, err := io.WriteString(w, "payload")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if path != filepath.Join(dir, "chart.png") {
		t.Fatalf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("expected payload, got %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the final file in %s, got %d entries", dir, len(entries))
	}
}

func TestWriteFile_UnwritableDestinationNamesFile(t *testing.T) {
	// A regular file where the output directory should be cannot be created,
	// regardless of the privileges the test runs with.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := WriteFile(blocker, "2_latency_analysis.png", func(w io.Writer) error { return nil })
	var werr *OutputWriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected OutputWriteError, got %v", err)
	}
	if filepath.Base(werr.Path) != "2_latency_analysis.png" {
		t.Fatalf("expected error to name the target file, got %s", werr.Path)
	}
	if !strings.Contains(err.Error(), "2_latency_analysis.png") {
		t.Fatalf("expected message to contain the file name, got %q", err.Error())
	}
}

func TestWriteFile_RenderErrorRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	renderErr := errors.New("boom")

	_, err := WriteFile(dir, "chart.png", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return renderErr
	})
	if !errors.Is(err, renderErr) {
		t.Fatalf("expected wrapped render error, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files left behind, got %d", len(entries))
	}
}
