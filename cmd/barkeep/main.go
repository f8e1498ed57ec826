// Package main is the entry point for the barkeep CLI.
package main

import (
	"os"

	"github.com/barkeep-io/barkeep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
