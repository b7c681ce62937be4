package main

import (
	"os"

	"github.com/wonny/compass/cmd/compass/commands"
)

// main is the entry point for the Compass CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/compass [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
