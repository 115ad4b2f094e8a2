package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port             int
	ImageDir         string
	AnnotationPath   string
	ProgressDir      string
	RenderWidth      int
	RenderHeight     int
	DensityThreshold int
}

func Load() *Config {
	return &Config{
		Port:             getEnvAsInt("PORT", 8888),
		ImageDir:         getEnv("IMAGE_DIR", filepath.Join("data", "train2024")),
		AnnotationPath:   getEnv("ANNOTATION_PATH", filepath.Join("data", "annotations", "instances_train2024.json")),
		ProgressDir:      getEnv("PROGRESS_DIR", "progress"),
		RenderWidth:      getEnvAsInt("RENDER_WIDTH", 800),
		RenderHeight:     getEnvAsInt("RENDER_HEIGHT", 600),
		DensityThreshold: getEnvAsInt("DENSITY_THRESHOLD", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
