package suggest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/utils"
	"github.com/hgbcccc/ObjectionClassficationUI/pkg/coco"
)

func record(n int) coco.ImageRecord {
	rec := coco.ImageRecord{FileName: "00001.jpg"}
	for i := 0; i < n; i++ {
		rec.Annotations = append(rec.Annotations, coco.Annotation{ID: i + 1})
	}
	return rec
}

func TestHeuristicThreshold(t *testing.T) {
	t.Setenv("USE_LLM_SUGGEST", "")
	s := New(10)

	tests := []struct {
		annotations int
		want        models.Label
	}{
		{0, models.LabelSparse},
		{9, models.LabelSparse},
		{10, models.LabelDense},
		{37, models.LabelDense},
	}
	for _, tt := range tests {
		got := s.Suggest(t.TempDir(), record(tt.annotations))
		assert.Equal(t, tt.want, got, "annotations=%d", tt.annotations)
	}
}

func TestNewReadsLLMEnv(t *testing.T) {
	t.Setenv("USE_LLM_SUGGEST", "")
	assert.False(t, New(10).useLLM)

	t.Setenv("USE_LLM_SUGGEST", "1")
	assert.True(t, New(10).useLLM)
}

func TestLLMFailureFallsBackToHeuristic(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	s := &Service{threshold: 3, useLLM: true, cacheDir: t.TempDir()}

	// Image file does not exist, so the LLM path fails before any API call.
	got := s.Suggest(t.TempDir(), record(5))
	assert.Equal(t, models.LabelDense, got)

	got = s.Suggest(t.TempDir(), record(1))
	assert.Equal(t, models.LabelSparse, got)
}

func TestLLMUsesCachedAnswer(t *testing.T) {
	imageDir := t.TempDir()
	imagePath := filepath.Join(imageDir, "00001.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("fake image bytes"), 0644))

	md5Hash, err := utils.CalculateFileMD5(imagePath)
	require.NoError(t, err)

	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, md5Hash+".txt"), []byte("dense\n"), 0644))

	// Heuristic would say sparse; the cached answer must win without any
	// API key or network access.
	t.Setenv("OPENAI_API_KEY", "")
	s := &Service{threshold: 10, useLLM: true, cacheDir: cacheDir}
	got := s.Suggest(imageDir, record(1))
	assert.Equal(t, models.LabelDense, got)
}

func TestCacheAnswerRoundTrip(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "suggest")
	s := &Service{cacheDir: cacheDir}

	cachePath := filepath.Join(cacheDir, "abc123.txt")
	s.cacheAnswer(cachePath, models.LabelSparse)

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, "sparse", string(data))
}

func TestGetModelDefault(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")
	s := &Service{}
	assert.Equal(t, "gpt-4o", s.getModel())

	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", s.getModel())
}
