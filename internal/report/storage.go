package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStorage writes rendered reports to an output directory. Writes go
// through a temp file and rename, so a crashed run never leaves a partial
// report behind.
type FileStorage struct {
	OutputDir string
}

func NewFileStorage(outputDir string) *FileStorage {
	if outputDir == "" {
		outputDir = "reports"
	}
	return &FileStorage{OutputDir: outputDir}
}

// Save writes content as a markdown report named after the address and
// returns the final path.
func (s *FileStorage) Save(address, content string) (string, error) {
	if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("report_%s_%d.md", sanitize(address), time.Now().UnixNano())
	finalPath := filepath.Join(s.OutputDir, name)

	tmp, err := os.CreateTemp(s.OutputDir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write temp report file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to chmod temp report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp report file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("failed to finalize report file: %w", err)
	}
	return finalPath, nil
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	out := strings.Trim(b.String(), "._-")
	if out == "" {
		return "unknown"
	}
	return out
}
