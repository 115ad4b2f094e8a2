package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/hgbcccc/ObjectionClassficationUI/cmd"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Error loading .env file", "err", err)
	}

	cmd.Execute()
}
