package main

import (
	"github.com/joho/godotenv"

	"fundrag/internal/cli"
)

func main() {
	// Missing .env is fine; API keys may come from the environment.
	_ = godotenv.Load()

	cli.Execute()
}
