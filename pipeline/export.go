package pipeline

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"
)

// WriteExport writes the run's accumulated ancillary content to a file.
// With compress set the content is gzip-wrapped.
func WriteExport(path, content string, compress bool) error {
	if content == "" {
		return ErrNoExportContent
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if !compress {
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return nil
	}

	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		gz.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize export: %w", err)
	}
	return nil
}
