package suggest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hgbcccc/ObjectionClassficationUI/internal/models"
	"github.com/hgbcccc/ObjectionClassficationUI/internal/utils"
)

type OpenAIRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type OpenAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// suggestWithLLM asks the model whether the image is sparse or dense.
// Answers are cached by image content hash so re-visiting a record during
// review never repeats the API call.
func (s *Service) suggestWithLLM(imagePath string) (models.Label, error) {
	md5Hash, err := utils.CalculateFileMD5(imagePath)
	if err != nil {
		return models.LabelNone, fmt.Errorf("failed to hash image: %w", err)
	}

	cachePath := filepath.Join(s.cacheDir, md5Hash+".txt")
	if cachedData, err := os.ReadFile(cachePath); err == nil {
		if label, ok := models.ParseLabel(strings.TrimSpace(string(cachedData))); ok && label != models.LabelNone {
			slog.Info("Using cached LLM suggestion", "cache_key", md5Hash, "label", label)
			return label, nil
		}
	}

	imageBase64, err := s.getImageAsBase64(imagePath)
	if err != nil {
		return models.LabelNone, fmt.Errorf("failed to encode image: %w", err)
	}

	request := OpenAIRequest{
		Model:       s.getModel(),
		Temperature: 0.0,
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{
						Type: "text",
						Text: `Look at the objects in this image.
						Answer with exactly one word: sparse or dense.
						Sparse means the objects are few or well separated.
						Dense means the objects are many or heavily overlapping.
						Do not add any explanations or formatting.`,
					},
					{
						Type: "image_url",
						ImageURL: &ImageURL{
							URL: fmt.Sprintf("data:image/png;base64,%s", imageBase64),
						},
					},
				},
			},
		},
	}

	slog.Info("Making OpenAI API call", "model", request.Model)

	response, err := s.callOpenAI(request)
	if err != nil {
		return models.LabelNone, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	answer := strings.ToLower(strings.Trim(strings.TrimSpace(response), `."'`))
	label, ok := models.ParseLabel(answer)
	if !ok || label == models.LabelNone {
		return models.LabelNone, fmt.Errorf("unexpected LLM answer %q", response)
	}

	s.cacheAnswer(cachePath, label)
	return label, nil
}

func (s *Service) cacheAnswer(cachePath string, label models.Label) {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		slog.Warn("Failed to create suggestion cache directory", "error", err)
		return
	}
	if err := os.WriteFile(cachePath, []byte(label), 0644); err != nil {
		slog.Warn("Failed to cache LLM suggestion", "error", err)
	}
}

func (s *Service) getModel() string {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		return "gpt-4o"
	}
	return model
}

func (s *Service) getImageAsBase64(imagePath string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(imageData), nil
}

func (s *Service) callOpenAI(request OpenAIRequest) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{
		Timeout: 120 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, string(body))
	}

	var openAIResponse OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openAIResponse); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(openAIResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return openAIResponse.Choices[0].Message.Content, nil
}
