// Command diracoq type-checks and normalizes Dirac notation terms.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/LucianoXu/diracoq/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		// A failed check has already been reported in the command output.
		if !errors.As(err, &exitErr) || exitErr.Code != cli.ExitFailure {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
