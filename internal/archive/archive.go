package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveOutputDir moves a previous training output directory to
// <parent>/archive/<name>-<timestamp> and returns the new path.
func ArchiveOutputDir(outputDir string) (string, error) {
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		return "", fmt.Errorf("output directory does not exist: %s", outputDir)
	}

	clean := filepath.Clean(outputDir)
	archiveDir := filepath.Join(filepath.Dir(clean), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(clean)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, time.Now().Format("20060102-150405")))

	// Two runs in the same second need a finer timestamp.
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, time.Now().Format("20060102-150405.000000")))
	}

	if err := os.Rename(clean, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output directory: %w", err)
	}
	return archivePath, nil
}
