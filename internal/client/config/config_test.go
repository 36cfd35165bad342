package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Empty(t, c.Token)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "exports", c.ExportDir)
}

func TestLoadJSONFile_OverlaysPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_url":"https://journal.example","online_check_interval":"10s"}`), 0o600))

	var c Config
	c.LoadDefaults()
	require.NoError(t, loadJSONFile(&c, path))

	assert.Equal(t, "https://journal.example", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
}

func TestLoadJSONFile_Errors(t *testing.T) {
	var c Config
	assert.Error(t, loadJSONFile(&c, filepath.Join(t.TempDir(), "missing.json")))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	assert.Error(t, loadJSONFile(&c, path))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("JOURNAL_SERVER_URL", "http://env:9000")
	t.Setenv("JOURNAL_TOKEN", "tok")
	t.Setenv("JOURNAL_REQUEST_TIMEOUT", "2s")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, "http://env:9000", c.ServerURL)
	assert.Equal(t, "tok", c.Token)
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
}

func TestParseFlagArgs(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := parseFlagArgs(&c, []string{"-a", "http://flag:1", "-x", "ignored", "-t=abc", "-i", "7"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag:1", c.ServerURL)
	assert.Equal(t, "abc", c.Token)
	assert.Equal(t, 7*time.Second, c.OnlineCheckInterval)
}

func TestParseFlagArgs_BadValue(t *testing.T) {
	var c Config
	c.LoadDefaults()
	assert.Error(t, parseFlagArgs(&c, []string{"-i", "soon"}))
}
