package main

import (
	"fmt"
	"os"

	"castctl.app/castctl/cmd/castctl/commands"
	"castctl.app/castctl/internal/session"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(session.ExitCode(err))
	}
}
