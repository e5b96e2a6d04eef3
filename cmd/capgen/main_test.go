package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	errW := &bytes.Buffer{}
	err := run(&bytes.Buffer{}, errW, []string{"-h"})

	require.NoError(t, err, "help should exit cleanly")
	require.Contains(t, errW.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined")
}

func TestRun_GeneratesReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	adl := `
component "Notify" {
  to_global_endpoint = true
}

instance "client" {}
instance "server" {}

connection "event" {
  type = "Notify"
  from = ["client.emit"]
  to   = ["server.irq"]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.hcl"), []byte(adl), 0o644))

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-arch", "aarch64", "-log-level", "error", dir})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"arch": "aarch64"`)
	require.Contains(t, out.String(), `"server.irq"`)
}
