package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tapcount/internal/model"
)

// ExportVersion is written into every exported document.
const ExportVersion = "2.0"

// ExportJSON renders st as an indented, versioned export document.
func ExportJSON(st model.State, exportedAt time.Time) ([]byte, error) {
	doc := toJSON(st)
	doc.ExportedAt = exportedAt.UTC().Format(time.RFC3339Nano)
	doc.Version = ExportVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportFileName returns the file name used for an export made at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("counter-app-data-%s.json", t.UTC().Format("2006-01-02"))
}

// ExportState writes st into the export directory and returns the file path.
func (s *Store) ExportState(_ context.Context, st model.State, exportedAt time.Time) (string, error) {
	return ExportFile(s.exportDir, st, exportedAt)
}

// ExportFile writes st into dir, replacing an export from the same day.
func ExportFile(dir string, st model.State, exportedAt time.Time) (string, error) {
	data, err := ExportJSON(st, exportedAt)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportFileName(exportedAt))
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
