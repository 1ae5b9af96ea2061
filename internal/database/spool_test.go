package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zerocopy-bench/internal/dataset"
)

func TestSpoolRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := dataset.Default()

	path, err := WriteSpoolArtifact(dir, BuildSpoolArtifact(b, "report:\n  dpi: 100\n"))
	if err != nil {
		t.Fatalf("WriteSpoolArtifact: %v", err)
	}
	if !strings.HasSuffix(path, b.Checksum()+".json.gz") {
		t.Fatalf("unexpected spool name %s", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final artifact, found %d entries", len(entries))
	}

	artifact, err := ReadSpoolArtifact(path)
	if err != nil {
		t.Fatalf("ReadSpoolArtifact: %v", err)
	}
	if artifact.Checksum != b.Checksum() || artifact.Benchmark.Checksum() != b.Checksum() {
		t.Fatalf("checksum changed across the spool round trip")
	}
	if artifact.ConfigContent == "" {
		t.Fatalf("config content lost")
	}
}

func TestWriteSpoolArtifactRejectsEmpty(t *testing.T) {
	if _, err := WriteSpoolArtifact(t.TempDir(), &SpoolArtifact{}); err == nil {
		t.Fatalf("expected error for empty artifact")
	}
}

func TestReadSpoolArtifactRejectsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.json.gz")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSpoolArtifact(path); err == nil {
		t.Fatalf("expected error for non-gzip file")
	}
}
