// Package batch reads and writes the plain CSV dialect used for translation
// batches: comma separated, no quoting, one record per line.
package batch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Row is one record. Position is the only identity of a field.
type Row []string

// Clone returns a copy that can be modified without touching r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// ReadRows reads every non-blank line of filename as a Row
func ReadRows(filename string) ([]Row, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	return ParseRows(string(content)), nil
}

// ParseRows splits content into rows. Windows line endings are accepted and
// blank lines are skipped. Fields are not trimmed.
func ParseRows(content string) []Row {
	var rows []Row
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, Row(strings.Split(line, ",")))
	}
	return rows
}

// WriteRows writes rows to filename, joining fields with "," and no trailing
// delimiter. Empty rows are skipped.
func WriteRows(filename string, rows []Row) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if _, err := w.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush csv file: %w", err)
	}
	return f.Close()
}

// OutputPath derives the file for one language from the configured output
// path: only the first dot-separated segment of the file name is kept, then
// "_<key>.csv" is appended. The directory part is preserved.
//
//	output.csv, de       -> output_de.csv
//	report.final.csv, fr -> report_fr.csv
func OutputPath(outputPath, languageKey string) string {
	dir, base := filepath.Split(outputPath)
	stem := base
	if i := strings.Index(base, "."); i >= 0 {
		stem = base[:i]
	}
	return dir + stem + "_" + languageKey + ".csv"
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
