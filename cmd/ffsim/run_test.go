package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunInstanceDirect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ffs.yaml")
	body := `
algorithm: direct
base_seed: 7
nproxy: 1
nsteplambda: 1
interfaces:
  - lambda: -5
    ntrial: 20
    nstate_target: 20
    pprune: 1.0
  - lambda: 0
    ntrial: 20
    nstate_target: 20
    pprune: 0.5
  - lambda: 5
    ntrial: 20
    nstate_target: 20
    pprune: 0.0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, runInstance(path, false))
}

func TestRunInstanceMissingFile(t *testing.T) {
	require.Error(t, runInstance(filepath.Join(t.TempDir(), "missing.yaml"), false))
}
