// Command catalogview runs shoppable catalog viewer sessions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/catalogview/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own ExitErrors; anything else is a flag or
		// argument error that cobra left silent.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
