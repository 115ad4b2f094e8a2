package coco

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Document is a COCO-format annotation bundle.
type Document struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// Image describes one entry in the document's images array.
type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is a single object annotation. BBox is [x, y, width, height]
// in pixel units. Difficult carries the VOC difficult flag through
// conversion; documents without it decode to 0.
type Annotation struct {
	ID         int       `json:"id"`
	ImageID    int       `json:"image_id"`
	CategoryID int       `json:"category_id"`
	BBox       []float64 `json:"bbox"`
	Area       float64   `json:"area"`
	IsCrowd    int       `json:"iscrowd"`
	Difficult  int       `json:"difficult"`
}

// Category names one object class.
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// ImageRecord is one image plus every annotation referencing it, the unit
// the review session iterates over. Annotations is never nil.
type ImageRecord struct {
	ImageID     int          `json:"image_id"`
	FileName    string       `json:"file_name"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Annotations []Annotation `json:"annotations"`
}

// Load reads and decodes a COCO annotation file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse annotation file %s: %w", path, err)
	}
	return &doc, nil
}

// BuildIndex groups the document's annotations by image ID and returns one
// record per image, in the order the images array lists them. Images nothing
// references get an empty annotation list. A duplicated image ID yields a
// single record for its first occurrence.
func (d *Document) BuildIndex() []ImageRecord {
	annsByImage := make(map[int][]Annotation, len(d.Images))
	for _, ann := range d.Annotations {
		annsByImage[ann.ImageID] = append(annsByImage[ann.ImageID], ann)
	}

	records := make([]ImageRecord, 0, len(d.Images))
	seen := make(map[int]bool, len(d.Images))
	for _, img := range d.Images {
		if seen[img.ID] {
			continue
		}
		seen[img.ID] = true
		anns := annsByImage[img.ID]
		if anns == nil {
			anns = []Annotation{}
		}
		records = append(records, ImageRecord{
			ImageID:     img.ID,
			FileName:    img.FileName,
			Width:       img.Width,
			Height:      img.Height,
			Annotations: anns,
		})
	}
	return records
}

// CategoryNames returns a lookup from category ID to name.
func (d *Document) CategoryNames() map[int]string {
	names := make(map[int]string, len(d.Categories))
	for _, cat := range d.Categories {
		names[cat.ID] = cat.Name
	}
	return names
}

// CategoryIDs returns the reverse lookup, category name to ID.
func CategoryIDs(categories []Category) map[string]int {
	ids := make(map[string]int, len(categories))
	for _, cat := range categories {
		ids[cat.Name] = cat.ID
	}
	return ids
}

// BuildCategories assigns IDs to the distinct names in lexicographic order,
// numbering from 1. Supercategory is always "none".
func BuildCategories(names []string) []Category {
	distinct := make(map[string]bool, len(names))
	for _, name := range names {
		distinct[name] = true
	}
	sorted := make([]string, 0, len(distinct))
	for name := range distinct {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	categories := make([]Category, 0, len(sorted))
	for i, name := range sorted {
		categories = append(categories, Category{
			ID:            i + 1,
			Name:          name,
			Supercategory: "none",
		})
	}
	return categories
}

// Write encodes the document as indented JSON at path, creating parent
// directories as needed. Nil slices are written as empty arrays so an empty
// split still produces a valid document.
func Write(path string, doc *Document) error {
	out := *doc
	if out.Images == nil {
		out.Images = []Image{}
	}
	if out.Annotations == nil {
		out.Annotations = []Annotation{}
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
