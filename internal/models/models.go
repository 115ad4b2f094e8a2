package models

import (
	"time"

	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

// Label is a density classification. The zero value means unclassified,
// so an image can never carry both labels at once.
type Label string

const (
	LabelNone   Label = ""
	LabelSparse Label = "sparse"
	LabelDense  Label = "dense"
)

// ParseLabel validates a label received from the shell.
func ParseLabel(s string) (Label, bool) {
	switch Label(s) {
	case LabelNone, LabelSparse, LabelDense:
		return Label(s), true
	}
	return LabelNone, false
}

// ClassificationMap records the label chosen per image file name.
// A file name with no entry is unclassified.
type ClassificationMap map[string]Label

type ReviewSession struct {
	ID              string             `json:"id"`
	ImageDir        string             `json:"image_dir"`
	AnnotationPath  string             `json:"annotation_path"`
	Doc             *coco.Document     `json:"-"`
	Records         []coco.ImageRecord `json:"-"`
	CategoryNames   map[int]string     `json:"-"`
	Classifications ClassificationMap  `json:"-"`
	Cursor          int                `json:"cursor"`
	Selection       Label              `json:"selection"`
	CreatedAt       time.Time          `json:"created_at"`
}

type SessionSnapshot struct {
	ID         string            `json:"id"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Classified int               `json:"classified"`
	Selection  Label             `json:"selection"`
	Suggested  Label             `json:"suggested,omitempty"`
	Current    *coco.ImageRecord `json:"current,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
