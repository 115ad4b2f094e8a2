// Package suggest proposes a density label for an image record so the
// reviewer starts from a sensible default instead of a blank selection.
package suggest

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

type Service struct {
	threshold int
	useLLM    bool
	cacheDir  string
}

func New(threshold int) *Service {
	// Check environment variables to determine which suggester to use
	useLLM := os.Getenv("USE_LLM_SUGGEST") != ""

	service := &Service{
		threshold: threshold,
		useLLM:    useLLM,
		cacheDir:  "cache/suggest",
	}

	if useLLM {
		slog.Info("Initializing LLM density suggester (annotation count + OpenAI)")
	} else {
		slog.Info("Initializing annotation count density suggester", "threshold", threshold)
	}

	return service
}

// Suggest returns a density label for rec. The annotation count heuristic
// always produces an answer; when LLM mode is on the image itself is sent
// for a second opinion, and any failure falls back to the heuristic.
func (s *Service) Suggest(imageDir string, rec coco.ImageRecord) models.Label {
	heuristic := s.heuristic(rec)

	if !s.useLLM {
		return heuristic
	}

	label, err := s.suggestWithLLM(filepath.Join(imageDir, rec.FileName))
	if err != nil {
		slog.Warn("LLM suggestion failed, using annotation count heuristic", "file", rec.FileName, "error", err)
		return heuristic
	}
	return label
}

func (s *Service) heuristic(rec coco.ImageRecord) models.Label {
	if len(rec.Annotations) >= s.threshold {
		return models.LabelDense
	}
	return models.LabelSparse
}
