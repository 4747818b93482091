package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8420", cfg.ListenAddr)
	assert.Equal(t, "stacksort.db", cfg.DBPath)
	assert.Equal(t, "tree.yaml", cfg.TreePath)
	assert.Positive(t, cfg.BroadcastBuffer)
	assert.Positive(t, cfg.ClientSendBuffer)
	assert.Positive(t, cfg.DBMaxOpenConns)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen_addr: \":9000\"\ntree_path: /srv/tree.yaml\nclient_send_buffer: 128\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/srv/tree.yaml", cfg.TreePath)
	assert.Equal(t, 128, cfg.ClientSendBuffer)
	assert.Equal(t, "stacksort.db", cfg.DBPath, "unset keys keep defaults")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
