// Package archive moves the output files of a previous run aside before a
// new run overwrites them.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveOutputs moves every existing file in paths into an "archive"
// directory next to it, renamed to <name>-<timestamp><ext>. Paths that do
// not exist are skipped. It returns the archive paths in input order.
func ArchiveOutputs(paths []string) ([]string, error) {
	return archiveAt(paths, time.Now())
}

func archiveAt(paths []string, now time.Time) ([]string, error) {
	var archived []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return archived, fmt.Errorf("failed to stat output file: %w", err)
		}
		if info.IsDir() {
			return archived, fmt.Errorf("output path is a directory: %s", path)
		}

		archiveDir := filepath.Join(filepath.Dir(path), "archive")
		if err := os.MkdirAll(archiveDir, 0755); err != nil {
			return archived, fmt.Errorf("failed to create archive directory: %w", err)
		}

		ext := filepath.Ext(path)
		name := strings.TrimSuffix(filepath.Base(path), ext)
		archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405"), ext))

		// Same second as an earlier archive: add microseconds
		if _, err := os.Stat(archivePath); err == nil {
			archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", name, now.Format("20060102-150405.000000"), ext))
		}

		if err := os.Rename(path, archivePath); err != nil {
			return archived, fmt.Errorf("failed to archive output file: %w", err)
		}
		archived = append(archived, archivePath)
	}
	return archived, nil
}
