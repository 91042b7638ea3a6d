package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nmota/reactorshim/shim"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
name: A
client_port: 7000
debug: true
peers:
  A: {host: 127.0.0.1, port: 9001}
  B: {host: 127.0.0.1, port: 9002}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "A", cfg.Name)
	require.Equal(t, 7000, cfg.ClientPort)
	require.True(t, cfg.Debug)
	require.Equal(t, shim.Name("A"), cfg.LocalName())

	cm := cfg.ClusterMap()
	require.Equal(t, shim.PeerAddr{Host: "127.0.0.1", Port: 9001}, cm["A"])
	require.Equal(t, shim.PeerAddr{Host: "127.0.0.1", Port: 9002}, cm["B"])
}

func TestLoadRejectsNameNotInPeers(t *testing.T) {
	path := writeConfig(t, `
name: C
client_port: 7000
peers:
  A: {host: 127.0.0.1, port: 9001}
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingClientPort(t *testing.T) {
	path := writeConfig(t, `
name: A
peers:
  A: {host: 127.0.0.1, port: 9001}
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidPeerPort(t *testing.T) {
	path := writeConfig(t, `
name: A
client_port: 7000
peers:
  A: {host: 127.0.0.1, port: 70000}
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := &ClusterConfig{Name: "A", ClientPort: 7000, Debug: false}
	cfg.ApplyOverrides("B", 8000, true, true)
	require.Equal(t, "B", cfg.Name)
	require.Equal(t, 8000, cfg.ClientPort)
	require.True(t, cfg.Debug)

	cfg.ApplyOverrides("", 0, false, false)
	require.Equal(t, "B", cfg.Name) // empty/zero overrides are no-ops
	require.Equal(t, 8000, cfg.ClientPort)
	require.True(t, cfg.Debug) // debugSet=false leaves Debug untouched
}
