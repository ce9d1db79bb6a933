package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, "worldclock.db", c.DatabaseDSN)
	assert.Equal(t, "", c.AccessToken)
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	b, err := json.Marshal(map[string]any{
		"server_endpoint_addr": "http://example:9000",
		"database_dsn":         "/tmp/replica.db",
		"access_token":         "tok",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "http://example:9000", cfg.ServerEndpointAddr)
		assert.Equal(t, "/tmp/replica.db", cfg.DatabaseDSN)
		assert.Equal(t, "tok", cfg.AccessToken)
	})

	t.Run("no config flag leaves values alone", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{ServerEndpointAddr: "kept", DatabaseDSN: "kept.db", AccessToken: "kept-tok"}
		parseJson(cfg)

		assert.Equal(t, "kept", cfg.ServerEndpointAddr)
		assert.Equal(t, "kept.db", cfg.DatabaseDSN)
		assert.Equal(t, "kept-tok", cfg.AccessToken)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
