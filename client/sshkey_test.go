package client

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func generateAuthorizedKey(t *testing.T, comment string) (string, ssh.PublicKey) {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	line := strings.TrimSuffix(string(ssh.MarshalAuthorizedKey(sshPub)), "\n")
	if comment != "" {
		line += " " + comment
	}

	return line, sshPub
}

func TestQuoteKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcXYZ019", "abcXYZ019"},
		{"_.-~/", "_.-~/"},
		{"ssh-ed25519 AAAA+/= me@host ~_.-é", "ssh-ed25519%20AAAA%2B/%3D%20me%40host%20~_.-%C3%A9"},
		{"a\nb", "a%0Ab"},
		{"100%", "100%25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QuoteKey(tt.in), "QuoteKey(%q)", tt.in)
	}
}

func TestLoadSSHKey(t *testing.T) {
	dir := t.TempDir()

	t.Run("strips surrounding newlines", func(t *testing.T) {
		line, _ := generateAuthorizedKey(t, "me@host")
		path := filepath.Join(dir, "id_ed25519.pub")
		require.NoError(t, os.WriteFile(path, []byte("\n"+line+"\n\n"), 0o600))

		key, err := LoadSSHKey(path)
		require.NoError(t, err)
		assert.Equal(t, line, key)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "absent.pub")

		_, err := LoadSSHKey(path)

		var lre *LocalResourceError
		require.ErrorAs(t, err, &lre)
		assert.Equal(t, path, lre.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "can't open file : "+path)
	})

	t.Run("not a public key", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.pub")
		require.NoError(t, os.WriteFile(path, []byte("not a key\n"), 0o600))

		_, err := LoadSSHKey(path)
		assert.ErrorIs(t, err, ErrInvalidSSHKey)

		var lre *LocalResourceError
		assert.ErrorAs(t, err, &lre)
	})
}

func TestFingerprint(t *testing.T) {
	line, pub := generateAuthorizedKey(t, "me@host")
	want := ssh.FingerprintSHA256(pub)

	t.Run("plain line", func(t *testing.T) {
		got, err := Fingerprint(line)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, strings.HasPrefix(got, "SHA256:"))
	})

	t.Run("quoted line", func(t *testing.T) {
		got, err := Fingerprint(QuoteKey(line))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Fingerprint("nope")
		assert.ErrorIs(t, err, ErrInvalidSSHKey)
	})
}

func TestDefaultSSHKeyPath(t *testing.T) {
	t.Setenv("HOME", "/home/alice")

	assert.Equal(t, filepath.Join("/home/alice", ".ssh", "id_rsa.pub"), DefaultSSHKeyPath())
}
