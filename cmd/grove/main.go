package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/grove/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own errors through the output formatter;
		// anything else (flag parsing, unknown subcommands) lands here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
