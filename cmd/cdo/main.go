// Package main is the entry point for the cdo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cdo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cdo: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
