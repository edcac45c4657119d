// Package main is the entry point for the TeamSync Assistant server.
package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/teamsync/cmd/assistant/app"
)

func main() {
	if err := app.NewAssistantCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
