// Package main provides the CLI entry point for herostratus.
package main

import (
	"os"

	"github.com/notgnoshi/herostratus/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args))
}
