package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/blih/client"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, client.DefaultBaseURL, cfg.URL)
	assert.Equal(t, client.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, client.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, client.DefaultSSHKeyPath(), cfg.SSHKey)
	assert.Empty(t, cfg.User)
	assert.Empty(t, cfg.Token)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		t.Setenv("TEST_BLIH_USER", "alice")

		path := writeFile(t, dir, "config.yaml", `
user: ${TEST_BLIH_USER}
url: http://localhost:8080
timeout: 5s
ssh_key: /tmp/key.pub
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "alice", cfg.User)
		assert.Equal(t, "http://localhost:8080", cfg.URL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "/tmp/key.pub", cfg.SSHKey)
		assert.Equal(t, client.DefaultUserAgent, cfg.UserAgent)
	})

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, dir, "config.toml", `
user = "bob"
user_agent = "custom/1.0"
proxy = "http://proxy:3128"
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "bob", cfg.User)
		assert.Equal(t, "custom/1.0", cfg.UserAgent)
		assert.Equal(t, "http://proxy:3128", cfg.Proxy)
		assert.Equal(t, client.DefaultBaseURL, cfg.URL)
		assert.Equal(t, client.DefaultTimeout, cfg.Timeout)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "config.ini", "user=x")

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "user: [unclosed")

		_, err := Load(path)
		assert.ErrorContains(t, err, "parsing config file")
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeFile(t, dir, "dur.yml", "timeout: soon")

		_, err := Load(path)
		assert.ErrorContains(t, err, "parsing timeout")
	})

	t.Run("invalid url", func(t *testing.T) {
		path := writeFile(t, dir, "url.yaml", "url: ftp://example.com")

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestLoadDefault(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := LoadDefault()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("toml found", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		writeFile(t, dir, filepath.Join("blih", "config.toml"), `user = "carol"`)

		cfg, err := LoadDefault()
		require.NoError(t, err)
		assert.Equal(t, "carol", cfg.User)
	})

	t.Run("yaml wins over toml", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		writeFile(t, dir, filepath.Join("blih", "config.toml"), `user = "carol"`)
		writeFile(t, dir, filepath.Join("blih", "config.yaml"), `user: dave`)

		cfg, err := LoadDefault()
		require.NoError(t, err)
		assert.Equal(t, "dave", cfg.User)
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvUser:    "erin",
		EnvToken:   "abc",
		EnvURL:     "http://127.0.0.1:1",
		EnvTimeout: "2m",
		EnvProxy:   "",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := Default()
	cfg.Proxy = "http://from-file"

	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "erin", cfg.User)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "http://127.0.0.1:1", cfg.URL)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, "http://from-file", cfg.Proxy, "empty variables do not override")
	assert.Equal(t, client.DefaultUserAgent, cfg.UserAgent)

	t.Run("bad timeout", func(t *testing.T) {
		err := Default().ApplyEnv(func(name string) (string, bool) {
			if name == EnvTimeout {
				return "never", true
			}

			return "", false
		})
		assert.ErrorContains(t, err, EnvTimeout)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg = Default()
	cfg.URL = "not a url"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}
