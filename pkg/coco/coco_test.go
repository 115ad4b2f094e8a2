package coco_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

func TestBuildIndex(t *testing.T) {
	doc := &coco.Document{
		Images: []coco.Image{
			{ID: 1, FileName: "a.jpg", Width: 640, Height: 480},
			{ID: 2, FileName: "b.jpg", Width: 800, Height: 600},
			{ID: 3, FileName: "c.jpg", Width: 320, Height: 240},
		},
		Annotations: []coco.Annotation{
			{ID: 10, ImageID: 2, CategoryID: 1, BBox: []float64{0, 0, 10, 10}},
			{ID: 11, ImageID: 1, CategoryID: 1, BBox: []float64{5, 5, 20, 20}},
			{ID: 12, ImageID: 2, CategoryID: 2, BBox: []float64{1, 1, 2, 2}},
		},
	}

	records := doc.BuildIndex()
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	if records[0].FileName != "a.jpg" || records[1].FileName != "b.jpg" || records[2].FileName != "c.jpg" {
		t.Errorf("Records out of source order: %q, %q, %q",
			records[0].FileName, records[1].FileName, records[2].FileName)
	}

	if len(records[0].Annotations) != 1 {
		t.Errorf("Expected 1 annotation for a.jpg, got %d", len(records[0].Annotations))
	}
	if len(records[1].Annotations) != 2 {
		t.Errorf("Expected 2 annotations for b.jpg, got %d", len(records[1].Annotations))
	}
	if records[1].Annotations[0].ID != 10 || records[1].Annotations[1].ID != 12 {
		t.Errorf("Annotations for b.jpg not in appearance order: %d, %d",
			records[1].Annotations[0].ID, records[1].Annotations[1].ID)
	}

	if records[2].Annotations == nil {
		t.Error("Unreferenced image should get an empty annotation list, got nil")
	}
	if len(records[2].Annotations) != 0 {
		t.Errorf("Expected 0 annotations for c.jpg, got %d", len(records[2].Annotations))
	}

	total := 0
	for _, rec := range records {
		total += len(rec.Annotations)
	}
	if total != len(doc.Annotations) {
		t.Errorf("Expected all %d annotations distributed, got %d", len(doc.Annotations), total)
	}
}

func TestBuildIndexDanglingAnnotation(t *testing.T) {
	doc := &coco.Document{
		Images: []coco.Image{
			{ID: 1, FileName: "a.jpg"},
		},
		Annotations: []coco.Annotation{
			{ID: 10, ImageID: 99, CategoryID: 1},
		},
	}

	records := doc.BuildIndex()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(records[0].Annotations) != 0 {
		t.Errorf("Annotation referencing unknown image should not attach anywhere, got %d", len(records[0].Annotations))
	}
}

func TestBuildIndexDuplicateImageID(t *testing.T) {
	doc := &coco.Document{
		Images: []coco.Image{
			{ID: 1, FileName: "first.jpg"},
			{ID: 1, FileName: "second.jpg"},
		},
	}

	records := doc.BuildIndex()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record for duplicated ID, got %d", len(records))
	}
	if records[0].FileName != "first.jpg" {
		t.Errorf("Expected first occurrence to win, got %q", records[0].FileName)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := coco.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing annotation file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if _, err := coco.Load(path); err == nil {
		t.Error("Expected error for malformed annotation file")
	}
}

func TestBuildCategories(t *testing.T) {
	categories := coco.BuildCategories([]string{"tree", "rock", "tree", "bush"})
	if len(categories) != 3 {
		t.Fatalf("Expected 3 distinct categories, got %d", len(categories))
	}

	expected := []string{"bush", "rock", "tree"}
	for i, cat := range categories {
		if cat.Name != expected[i] {
			t.Errorf("Expected category %d to be %q, got %q", i, expected[i], cat.Name)
		}
		if cat.ID != i+1 {
			t.Errorf("Expected category %q to have ID %d, got %d", cat.Name, i+1, cat.ID)
		}
		if cat.Supercategory != "none" {
			t.Errorf("Expected supercategory none, got %q", cat.Supercategory)
		}
	}
}

func TestWriteEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := coco.Write(path, &coco.Document{}); err != nil {
		t.Fatalf("Failed to write empty document: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("Empty document must encode arrays, not null: %s", data)
	}
	for _, key := range []string{`"images": []`, `"annotations": []`, `"categories": []`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in output, got %s", key, data)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	doc := &coco.Document{
		Images: []coco.Image{{ID: 1, FileName: "a.jpg", Width: 100, Height: 50}},
		Annotations: []coco.Annotation{
			{ID: 1, ImageID: 1, CategoryID: 1, BBox: []float64{10, 10, 40, 50}, Area: 2000, Difficult: 1},
		},
		Categories: []coco.Category{{ID: 1, Name: "tree", Supercategory: "none"}},
	}

	path := filepath.Join(t.TempDir(), "out", "doc.json")
	if err := coco.Write(path, doc); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	got, err := coco.Load(path)
	if err != nil {
		t.Fatalf("Failed to load written document: %v", err)
	}
	if len(got.Images) != 1 || got.Images[0].FileName != "a.jpg" {
		t.Errorf("Images did not survive round trip: %+v", got.Images)
	}
	if len(got.Annotations) != 1 || got.Annotations[0].Area != 2000 {
		t.Errorf("Annotations did not survive round trip: %+v", got.Annotations)
	}
	if got.Annotations[0].Difficult != 1 {
		t.Errorf("Expected difficult flag to survive round trip, got %d", got.Annotations[0].Difficult)
	}
	if len(got.Categories) != 1 || got.Categories[0].Name != "tree" {
		t.Errorf("Categories did not survive round trip: %+v", got.Categories)
	}
}
