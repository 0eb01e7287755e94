// Package main provides the entry point for the linescout CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/linescout/linescout/cmd/linescout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, cmd.ErrNoMatch) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
