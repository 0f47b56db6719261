package client

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultSSHKeyPath returns ~/.ssh/id_rsa.pub.
func DefaultSSHKeyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}

	return filepath.Join(home, ".ssh", "id_rsa.pub")
}

// LoadSSHKey reads a public key file and returns its authorized_keys line
// with surrounding newlines removed. Unreadable files and files that do not
// hold a public key yield a *LocalResourceError naming path.
func LoadSSHKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &LocalResourceError{Path: path, Err: err}
	}

	key := strings.Trim(string(data), "\n")

	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
		return "", &LocalResourceError{Path: path, Err: fmt.Errorf("%w: %w", ErrInvalidSSHKey, err)}
	}

	return key, nil
}

// Fingerprint returns the SHA256 fingerprint of an authorized_keys line,
// accepting the percent-encoded form the service stores.
func Fingerprint(key string) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key))
	if err != nil {
		unquoted, uerr := url.PathUnescape(key)
		if uerr != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSSHKey, err)
		}

		pub, _, _, _, err = ssh.ParseAuthorizedKey([]byte(unquoted))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSSHKey, err)
		}
	}

	return ssh.FingerprintSHA256(pub), nil
}

const upperHex = "0123456789ABCDEF"

// QuoteKey percent-encodes s the way the service expects key uploads:
// letters, digits, "_.-~" and "/" are kept, every other byte of the UTF-8
// encoding becomes %XX.
func QuoteKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepUnquoted(c) {
			b.WriteByte(c)
			continue
		}

		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0xf])
	}

	return b.String()
}

func keepUnquoted(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~', c == '/':
		return true
	}

	return false
}
