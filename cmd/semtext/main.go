// Package main is the entry point for the semtext CLI tool.
package main

import (
	"os"

	"github.com/semtext/semtext/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
