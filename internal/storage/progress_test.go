package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/storage"
)

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	m := models.ClassificationMap{
		"00002.jpg": models.LabelDense,
		"00001.jpg": models.LabelSparse,
		"00010.jpg": models.LabelSparse,
	}

	if err := storage.ExportProgress(path, m); err != nil {
		t.Fatalf("Error exporting progress: %v", err)
	}

	got, err := storage.ImportProgress(path)
	if err != nil {
		t.Fatalf("Error importing progress: %v", err)
	}

	if len(got) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(got))
	}
	for name, label := range m {
		if got[name] != label {
			t.Errorf("Expected %s to be %q, got %q", name, label, got[name])
		}
	}
}

func TestExportSortsByFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	m := models.ClassificationMap{
		"b.jpg": models.LabelDense,
		"a.jpg": models.LabelSparse,
		"c.jpg": models.LabelDense,
	}

	if err := storage.ExportProgress(path, m); err != nil {
		t.Fatalf("Error exporting progress: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Error reading progress file: %v", err)
	}

	expected := "a.jpg: sparse\nb.jpg: dense\nc.jpg: dense\n"
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, string(data))
	}
}

func TestExportOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	if err := os.WriteFile(path, []byte("stale.jpg: dense\nleftover.jpg: sparse\n"), 0644); err != nil {
		t.Fatalf("Error seeding progress file: %v", err)
	}

	if err := storage.ExportProgress(path, models.ClassificationMap{"fresh.jpg": models.LabelSparse}); err != nil {
		t.Fatalf("Error exporting progress: %v", err)
	}

	got, err := storage.ImportProgress(path)
	if err != nil {
		t.Fatalf("Error importing progress: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 entry after overwrite, got %d", len(got))
	}
	if got["fresh.jpg"] != models.LabelSparse {
		t.Errorf("Expected fresh.jpg to be sparse, got %q", got["fresh.jpg"])
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	content := "00001.jpg: sparse\njunk line without separator\n\n00002.jpg:dense\n  00003.jpg  :  sparse  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Error writing progress file: %v", err)
	}

	got, err := storage.ImportProgress(path)
	if err != nil {
		t.Fatalf("Error importing progress: %v", err)
	}

	if len(got) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(got))
	}
	if got["00001.jpg"] != models.LabelSparse {
		t.Errorf("Expected 00001.jpg to be sparse, got %q", got["00001.jpg"])
	}
	if got["00002.jpg"] != models.LabelDense {
		t.Errorf("Expected 00002.jpg to be dense, got %q", got["00002.jpg"])
	}
	if got["00003.jpg"] != models.LabelSparse {
		t.Errorf("Expected whitespace to be trimmed, got %q", got["00003.jpg"])
	}
}

func TestImportSplitsOnFirstColon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	if err := os.WriteFile(path, []byte("video:01.jpg: dense\n"), 0644); err != nil {
		t.Fatalf("Error writing progress file: %v", err)
	}

	got, err := storage.ImportProgress(path)
	if err != nil {
		t.Fatalf("Error importing progress: %v", err)
	}

	// A ":" inside the file name shifts everything after it into the label.
	if _, ok := got["video"]; !ok {
		t.Errorf("Expected split on first colon, got %v", got)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := storage.ImportProgress(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Error("Expected error for missing progress file, got nil")
	}
}

func TestExportEmptyMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	if err := storage.ExportProgress(path, models.ClassificationMap{}); err != nil {
		t.Fatalf("Error exporting empty progress: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Error reading progress file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty file, got %q", string(data))
	}
}
