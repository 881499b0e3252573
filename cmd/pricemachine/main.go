package main

import (
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/pricemachine/internal/cli"
)

func main() {
	// Load .env if present; variables already set in the environment win
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cli.Execute()
}
