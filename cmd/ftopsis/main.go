// Package main is the entry point for the ftopsis CLI.
package main

import (
	"os"

	"github.com/MikeSquared-Agency/Ftopsis/cmd/ftopsis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
