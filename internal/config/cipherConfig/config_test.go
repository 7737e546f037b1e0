package cipherConfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(CONFIG_CIPHER_PATH, "")
	t.Setenv("TDES_STAGGER", "50ms")
	t.Setenv("TDES_PIPELINE_DEPTH", "4")

	config, err := MustLoadCipherConfig()
	require.NoError(t, err)

	assert.Equal(t, "lsb", config.Tables.SBoxIndexing)
	assert.Empty(t, config.Tables.Dir)
	assert.True(t, config.Pipeline.Concurrent)
	assert.Equal(t, 50*time.Millisecond, config.Pipeline.Stagger)
	assert.Equal(t, 4, config.Pipeline.Depth)
	assert.Equal(t, "info", config.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cipher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tables:
  dir: /etc/tdes/tables
  sbox_indexing: msb
pipeline:
  stagger: 10ms
  depth: 2
log:
  level: debug
`), 0644))

	t.Setenv(CONFIG_CIPHER_PATH, path)
	t.Setenv("TDES_CONCURRENT", "false")

	config, err := MustLoadCipherConfig()
	require.NoError(t, err)

	assert.Equal(t, "/etc/tdes/tables", config.Tables.Dir)
	assert.Equal(t, "msb", config.Tables.SBoxIndexing)
	assert.False(t, config.Pipeline.Concurrent)
	assert.Equal(t, 10*time.Millisecond, config.Pipeline.Stagger)
	assert.Equal(t, 2, config.Pipeline.Depth)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(CONFIG_CIPHER_PATH, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := MustLoadCipherConfig()
	assert.Error(t, err)
}
