// ABOUTME: CLI entry point for the calc interactive calculator
// ABOUTME: Builds the cobra command tree and exits non-zero on error

package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
