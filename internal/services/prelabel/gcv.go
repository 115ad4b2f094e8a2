// Package prelabel bootstraps COCO annotations for a directory of raw
// images by running Google Cloud Vision object localization over each one.
package prelabel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/utils"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

type Service struct {
	minScore float64
	cacheDir string
}

func New(minScore float64) *Service {
	slog.Info("Initializing Google Cloud Vision object localizer", "min_score", minScore)
	return &Service{
		minScore: minScore,
		cacheDir: "cache/gcv",
	}
}

// DetectObjects runs object localization on one image. Responses are cached
// by image content hash, so re-running over a directory only pays for new
// or changed files.
func (s *Service) DetectObjects(imagePath string) (models.GCVResponse, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return models.GCVResponse{}, fmt.Errorf("failed to read image: %w", err)
	}

	md5Hash := utils.CalculateDataMD5(data)
	cachePath := filepath.Join(s.cacheDir, md5Hash+".json")
	if cachedData, err := os.ReadFile(cachePath); err == nil {
		var response models.GCVResponse
		if err := json.Unmarshal(cachedData, &response); err == nil {
			slog.Info("Using cached object localization", "cache_key", md5Hash)
			return response, nil
		}
	}

	ctx := context.Background()

	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return models.GCVResponse{}, err
	}
	defer client.Close()

	image, err := vision.NewImageFromReader(bytes.NewReader(data))
	if err != nil {
		return models.GCVResponse{}, err
	}

	annotations, err := client.LocalizeObjects(ctx, image, nil)
	if err != nil {
		return models.GCVResponse{}, err
	}

	response := convertObjectAnnotations(annotations)
	s.cacheResponse(cachePath, md5Hash, response)
	return response, nil
}

func (s *Service) cacheResponse(cachePath, md5Hash string, response models.GCVResponse) {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		slog.Warn("Failed to create localization cache directory", "error", err)
		return
	}
	data, err := json.Marshal(response)
	if err != nil {
		slog.Warn("Failed to encode localization response", "error", err)
		return
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		slog.Warn("Failed to cache localization response", "error", err)
	} else {
		slog.Info("Localization response cached", "cache_key", md5Hash)
	}
}

type pendingAnnotation struct {
	annotation coco.Annotation
	category   string
}

// BuildDocument localizes every image in imageDir and assembles the results
// into a COCO document. Detected object names become the category table,
// numbered in lexicographic order; detections below the score threshold are
// dropped. Files that do not decode as images are skipped with a warning.
func (s *Service) BuildDocument(imageDir string) (*coco.Document, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	doc := &coco.Document{}
	var pending []pendingAnnotation
	var names []string
	annotationID := 1

	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		imagePath := filepath.Join(imageDir, entry.Name())
		width, height, err := utils.GetImageDimensions(imagePath)
		if err != nil {
			slog.Warn("Skipping unreadable image", "file", entry.Name(), "error", err)
			continue
		}

		response, err := s.DetectObjects(imagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to localize objects in %s: %w", entry.Name(), err)
		}

		imageID := len(doc.Images) + 1
		doc.Images = append(doc.Images, coco.Image{
			ID:       imageID,
			FileName: entry.Name(),
			Width:    width,
			Height:   height,
		})

		for _, obj := range objectAnnotations(response) {
			if obj.Score < s.minScore {
				continue
			}
			bbox, ok := pixelBBox(obj.BoundingPoly, width, height)
			if !ok {
				continue
			}
			pending = append(pending, pendingAnnotation{
				annotation: coco.Annotation{
					ID:      annotationID,
					ImageID: imageID,
					BBox:    bbox,
					Area:    bbox[2] * bbox[3],
					IsCrowd: 0,
				},
				category: obj.Name,
			})
			names = append(names, obj.Name)
			annotationID++
		}
	}

	doc.Categories = coco.BuildCategories(names)
	ids := coco.CategoryIDs(doc.Categories)
	for _, p := range pending {
		p.annotation.CategoryID = ids[p.category]
		doc.Annotations = append(doc.Annotations, p.annotation)
	}

	slog.Info("Pre-labeling complete",
		"images", len(doc.Images),
		"annotations", len(doc.Annotations),
		"categories", len(doc.Categories))
	return doc, nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

func objectAnnotations(response models.GCVResponse) []models.ObjectAnnotation {
	if len(response.Responses) == 0 {
		return nil
	}
	return response.Responses[0].LocalizedObjectAnnotations
}

// pixelBBox converts a normalized bounding polygon to a pixel-space
// [x, y, width, height] box, clamped to the image.
func pixelBBox(poly models.BoundingPoly, width, height int) ([]float64, bool) {
	if len(poly.NormalizedVertices) == 0 {
		return nil, false
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := 0.0, 0.0
	for _, v := range poly.NormalizedVertices {
		minX = math.Min(minX, v.X*float64(width))
		minY = math.Min(minY, v.Y*float64(height))
		maxX = math.Max(maxX, v.X*float64(width))
		maxY = math.Max(maxY, v.Y*float64(height))
	}

	minX = math.Max(minX, 0)
	minY = math.Max(minY, 0)
	maxX = math.Min(maxX, float64(width))
	maxY = math.Min(maxY, float64(height))

	w := maxX - minX
	h := maxY - minY
	if w <= 0 || h <= 0 {
		return nil, false
	}
	return []float64{minX, minY, w, h}, true
}

func convertObjectAnnotations(annotations []*visionpb.LocalizedObjectAnnotation) models.GCVResponse {
	var converted []models.ObjectAnnotation
	for _, obj := range annotations {
		if obj == nil {
			continue
		}
		converted = append(converted, models.ObjectAnnotation{
			MID:          obj.Mid,
			Name:         obj.Name,
			Score:        float64(obj.Score),
			BoundingPoly: convertBoundingPoly(obj.BoundingPoly),
		})
	}

	return models.GCVResponse{
		Responses: []models.Response{
			{
				LocalizedObjectAnnotations: converted,
			},
		},
	}
}

func convertBoundingPoly(poly *visionpb.BoundingPoly) models.BoundingPoly {
	if poly == nil {
		return models.BoundingPoly{}
	}

	var vertices []models.NormalizedVertex
	for _, vertex := range poly.NormalizedVertices {
		vertices = append(vertices, models.NormalizedVertex{
			X: float64(vertex.X),
			Y: float64(vertex.Y),
		})
	}

	return models.BoundingPoly{NormalizedVertices: vertices}
}
