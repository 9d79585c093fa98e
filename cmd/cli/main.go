// Package main is the entry point for the aurora-quote CLI.
package main

import (
	"os"

	"aurora-quote/cmd/cli/cmd"
	"aurora-quote/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
