// Package testutil builds the fake external tools the test suites run
// against: shell scripts that emit canned counter or verifier output.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"countercheck/internal/config"
)

// WriteScript writes an executable shell script and returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// FakeCounter builds a counter tool that reports the given exact count in
// competition output format.
func FakeCounter(t *testing.T, dir, name, count string) config.Tool {
	t.Helper()
	body := "echo 'c s type mc'\n" +
		"echo 's SATISFIABLE'\n" +
		"echo 'c s exact arb int " + count + "'\n"
	path := WriteScript(t, dir, name+".sh", body)
	return config.Tool{Name: name, Path: path, Args: "{INSTANCE}", Exact: true}
}

// BrokenCounter builds a counter tool that exits nonzero without output.
func BrokenCounter(t *testing.T, dir, name string) config.Tool {
	t.Helper()
	path := WriteScript(t, dir, name+".sh", "exit 2\n")
	return config.Tool{Name: name, Path: path, Args: "{INSTANCE}"}
}

// FakeVerifier builds a proof-pipeline tool that reports the given
// verified count.
func FakeVerifier(t *testing.T, dir, name, count string) config.Tool {
	t.Helper()
	body := "echo 'model count: " + count + "'\n" +
		"echo 'proofs verified'\n"
	path := WriteScript(t, dir, name+".sh", body)
	return config.Tool{Name: name, Path: path, Args: "{INSTANCE}"}
}
