package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/keyline/keyline/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Commands print their own diagnostics; the message here covers
		// flag-parse errors and other failures cobra surfaces directly.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
