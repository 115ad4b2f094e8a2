package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/utils"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/voc"
)

// Converter turns a Pascal VOC directory layout into one COCO annotation
// bundle per split. Image and annotation IDs restart at 1 for every split.
type Converter struct {
	vocRoot string
	outRoot string
	tag     string
	splits  []string
}

func New(vocRoot, outRoot, tag string, splits []string) *Converter {
	return &Converter{
		vocRoot: vocRoot,
		outRoot: outRoot,
		tag:     tag,
		splits:  splits,
	}
}

// pendingAnnotation pairs an annotation with its class name until the
// split's category table has been assigned.
type pendingAnnotation struct {
	annotation coco.Annotation
	category   string
}

// Run converts every configured split, copies the referenced images into
// the split's output directory and writes its annotation document.
func (c *Converter) Run() error {
	for _, split := range c.splits {
		doc, err := c.convertSplit(split)
		if err != nil {
			return fmt.Errorf("failed to convert split %s: %w", split, err)
		}

		imagesDir := filepath.Join(c.outRoot, split+c.tag)
		if err := os.MkdirAll(imagesDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for _, img := range doc.Images {
			src := filepath.Join(c.vocRoot, "JPEGImages", img.FileName)
			if err := utils.CopyFile(src, filepath.Join(imagesDir, img.FileName)); err != nil {
				return fmt.Errorf("failed to copy %s: %w", img.FileName, err)
			}
		}

		annPath := filepath.Join(c.outRoot, "annotations", "instances_"+split+c.tag+".json")
		if err := coco.Write(annPath, doc); err != nil {
			return err
		}

		slog.Info("Converted split", "split", split,
			"images", len(doc.Images),
			"annotations", len(doc.Annotations),
			"categories", len(doc.Categories))
	}
	return nil
}

// convertSplit builds the split's COCO document in two passes: the first
// collects images and annotations still carrying their class names, the
// second joins them against the category table built from those names.
// IDs listed in the split index without both an image and an XML file are
// filtered out, not reported.
func (c *Converter) convertSplit(split string) (*coco.Document, error) {
	ids, err := voc.ReadImageSet(c.vocRoot, split)
	if err != nil {
		return nil, err
	}

	images := []coco.Image{}
	pending := []pendingAnnotation{}
	names := []string{}
	annotationID := 1

	for _, id := range ids {
		imagePath := voc.ImagePath(c.vocRoot, id)
		annotationPath := voc.AnnotationPath(c.vocRoot, id)
		if _, err := os.Stat(imagePath); err != nil {
			slog.Debug("Skipping id without image file", "id", id, "split", split)
			continue
		}
		if _, err := os.Stat(annotationPath); err != nil {
			slog.Debug("Skipping id without annotation file", "id", id, "split", split)
			continue
		}

		ann, err := voc.ParseAnnotationFile(annotationPath)
		if err != nil {
			return nil, err
		}

		image := coco.Image{
			ID:       len(images) + 1,
			FileName: id + ".jpg",
			Width:    ann.Size.Width,
			Height:   ann.Size.Height,
		}
		images = append(images, image)

		for _, obj := range ann.Objects {
			w := obj.BndBox.Xmax - obj.BndBox.Xmin
			h := obj.BndBox.Ymax - obj.BndBox.Ymin
			pending = append(pending, pendingAnnotation{
				annotation: coco.Annotation{
					ID:        annotationID,
					ImageID:   image.ID,
					BBox:      []float64{float64(obj.BndBox.Xmin), float64(obj.BndBox.Ymin), float64(w), float64(h)},
					Area:      float64(w * h),
					IsCrowd:   0,
					Difficult: obj.Difficult,
				},
				category: obj.Name,
			})
			names = append(names, obj.Name)
			annotationID++
		}
	}

	categories := coco.BuildCategories(names)
	annotations, err := resolveCategories(pending, categories)
	if err != nil {
		return nil, err
	}

	return &coco.Document{
		Images:      images,
		Annotations: annotations,
		Categories:  categories,
	}, nil
}

// resolveCategories is the second pass: every pending class name must map
// onto the category table, since the table was built from those same names.
// A miss means the converter's own bookkeeping broke.
func resolveCategories(pending []pendingAnnotation, categories []coco.Category) ([]coco.Annotation, error) {
	ids := coco.CategoryIDs(categories)
	annotations := make([]coco.Annotation, 0, len(pending))
	for _, p := range pending {
		id, ok := ids[p.category]
		if !ok {
			return nil, fmt.Errorf("no category id for %q: category table out of sync", p.category)
		}
		ann := p.annotation
		ann.CategoryID = id
		annotations = append(annotations, ann)
	}
	return annotations, nil
}
