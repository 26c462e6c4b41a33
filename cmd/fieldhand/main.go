// Package main is the entry point for the fieldhand CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fieldhand/fieldhand/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
