package storage

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
)

// ExportProgress writes one "<file_name>: <label>" line per classification,
// sorted by file name so repeated exports diff cleanly. The target file is
// overwritten. File names containing ":" are a known ambiguity of the
// format and are not escaped.
func ExportProgress(path string, m models.ClassificationMap) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, m[name])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	return nil
}

// ImportProgress reads a progress file into a fresh map. Each line is split
// on its first ":" with both sides trimmed; lines without a ":" are skipped.
// A file that cannot be read fails the whole import.
func ImportProgress(path string) (models.ClassificationMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress file: %w", err)
	}
	defer f.Close()

	m := make(models.ClassificationMap)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		m[name] = models.Label(strings.TrimSpace(parts[1]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}
	return m, nil
}
