// Command ncsync is the CLI front end: it wires together the config/auth
// credential layer, the C4 state store, the C9 pair registry and the C8
// orchestrator behind a set of cobra subcommands.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
