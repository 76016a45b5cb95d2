package main

import (
	"os"

	"github.com/wonny/fairvalue/cmd/fairvalue/commands"
)

// main is the entry point for the fairvalue CLI: go run ./cmd/fairvalue [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
