package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const libraryCUE = `package lib

module: Core: {
	comment: "processing core"
	configs: WIDTH: "32"
	services: step: {}
	requests: mem_read: {
		args: [{name: "addr", type: "uint32"}]
		rets: [{name: "data", type: "uint64"}]
	}
}

module: Mem: {
	external: true
	directory: "ip/mem"
	services: read: {args: [{name: "addr", type: "uint32"}]}
}

module: Top: {
	comment: "system top"
	services: tick: {}
	instances: {
		core: {module: "Core", config: {WIDTH: 64}}
		mem: {module: "Mem"}
	}
	tick: post: {code: ["done = 1;"]}
	connections: [{from: "core.mem_read", to: "mem.read"}]
	sequences: [["mem", "core"], ["core", "post"]]
}
`

// writeLibrary writes files (name -> content) into a fresh directory.
func writeLibrary(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func defaultLibrary(t *testing.T) string {
	t.Helper()
	return writeLibrary(t, map[string]string{"lib.cue": libraryCUE})
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
