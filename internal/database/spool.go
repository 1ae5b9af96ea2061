package database

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zerocopy-bench/internal/dataset"
)

type SpoolArtifact struct {
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`

	ConfigContent string `json:"config_content,omitempty"`

	Benchmark *dataset.Benchmark `json:"benchmark"`
}

func DefaultSpoolDir() string {
	if v := strings.TrimSpace(os.Getenv("ZEROCOPY_BENCH_SPOOL_DIR")); v != "" {
		return v
	}
	return "spool"
}

// BuildSpoolArtifact wraps a measured benchmark for later export.
func BuildSpoolArtifact(b *dataset.Benchmark, configContent string) *SpoolArtifact {
	return &SpoolArtifact{
		Version:       1,
		CreatedAt:     time.Now(),
		Checksum:      b.Checksum(),
		ConfigContent: configContent,
		Benchmark:     b,
	}
}

// WriteSpoolArtifact writes a gzip-compressed JSON artifact to disk atomically.
// It returns the final file path.
func WriteSpoolArtifact(dir string, artifact *SpoolArtifact) (string, error) {
	if artifact == nil || artifact.Benchmark == nil {
		return "", fmt.Errorf("spool artifact is empty")
	}
	if dir == "" {
		dir = DefaultSpoolDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	checksum := artifact.Checksum
	if checksum == "" {
		checksum = "nocsum"
	}
	name := fmt.Sprintf(
		"transfer_%s_%s.json.gz",
		artifact.CreatedAt.UTC().Format("20060102T150405Z"),
		checksum,
	)
	finalPath := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(artifact); err != nil {
		_ = gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	ok = true
	return finalPath, nil
}

// ReadSpoolArtifact loads an artifact written by WriteSpoolArtifact and
// checks the benchmark shape.
func ReadSpoolArtifact(path string) (*SpoolArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer gz.Close()

	var artifact SpoolArtifact
	if err := json.NewDecoder(gz).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if artifact.Benchmark == nil {
		return nil, fmt.Errorf("%s holds no benchmark", path)
	}
	if err := artifact.Benchmark.Validate(); err != nil {
		return nil, err
	}
	return &artifact, nil
}
