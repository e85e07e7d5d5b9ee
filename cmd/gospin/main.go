// Command gospin evaluates angular momentum algebra exactly from the shell
// and serves the same tools over HTTP.
//
// Usage:
//
//	gospin cg 1/2 1/2 1/2 -1/2 1 0
//	gospin rewrite --basis Jz '{"basis": "Jx", "j": "1/2", "m": "1/2"}'
//	gospin serve --config gospin.yaml
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/njchilds90/gospin/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Tool failures were already printed by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
