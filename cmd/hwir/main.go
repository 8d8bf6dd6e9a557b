package main

import (
	"os"

	"github.com/roach88/hwir/internal/cli"
)

// Command hwir compiles CUE module libraries and encodes, decodes and
// inspects hardware module IR documents.
func main() {
	// Commands report their own errors; only the exit code is left to set
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
