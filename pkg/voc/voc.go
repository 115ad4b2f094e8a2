package voc

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Annotation is one PASCAL VOC annotation document.
type Annotation struct {
	XMLName  xml.Name `xml:"annotation"`
	Filename string   `xml:"filename"`
	Size     Size     `xml:"size"`
	Objects  []Object `xml:"object"`
}

// Size holds the annotated image's pixel dimensions.
type Size struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
}

// Object is a single labeled box.
type Object struct {
	Name      string `xml:"name"`
	Difficult int    `xml:"difficult"`
	BndBox    BndBox `xml:"bndbox"`
}

// BndBox is corner-to-corner, unlike COCO's corner-plus-extent convention.
type BndBox struct {
	Xmin int `xml:"xmin"`
	Ymin int `xml:"ymin"`
	Xmax int `xml:"xmax"`
	Ymax int `xml:"ymax"`
}

// ParseAnnotation decodes a VOC annotation document.
func ParseAnnotation(data []byte) (*Annotation, error) {
	var ann Annotation
	if err := xml.Unmarshal(data, &ann); err != nil {
		return nil, fmt.Errorf("failed to parse VOC XML: %w", err)
	}
	return &ann, nil
}

// ParseAnnotationFile reads and decodes the annotation for one image.
func ParseAnnotationFile(path string) (*Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}
	ann, err := ParseAnnotation(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ann, nil
}

// ImagePath returns the JPEGImages path for an image ID.
func ImagePath(root, id string) string {
	return filepath.Join(root, "JPEGImages", id+".jpg")
}

// AnnotationPath returns the Annotations path for an image ID.
func AnnotationPath(root, id string) string {
	return filepath.Join(root, "Annotations", id+".xml")
}

// SetPath returns the ImageSets/Main index file for a split.
func SetPath(root, split string) string {
	return filepath.Join(root, "ImageSets", "Main", split+".txt")
}

// ReadImageSet reads a split's image-ID list, one bare ID per line.
// Blank lines are skipped.
func ReadImageSet(root, split string) ([]string, error) {
	data, err := os.ReadFile(SetPath(root, split))
	if err != nil {
		return nil, fmt.Errorf("failed to read image set: %w", err)
	}
	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
