package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/apflow/internal/cli"
)

// main is the entry point for the apflow CLI binary.
func main() {
	err := cli.Execute(os.Args[1:])

	// Classified failures have already written their report through the
	// command's formatter; only usage and config errors still need a line.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
