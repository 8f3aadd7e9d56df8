package main

import (
	"github.com/joho/godotenv"

	"wasmkit/internal/cli"
)

func main() {
	// A missing .env is normal; WASMKIT_* variables may come from the shell.
	_ = godotenv.Load()
	cli.Execute()
}
