// Package config loads the command line client's settings from a YAML or
// TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/blih/client"
)

var (
	// ErrUnsupportedFormat is returned by Load for a file extension other
	// than .yaml, .yml or .toml.
	ErrUnsupportedFormat = errors.New("config: unsupported file format")

	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("config: invalid")
)

// Environment variables consulted by ApplyEnv.
const (
	EnvUser      = "BLIH_USER"
	EnvToken     = "BLIH_TOKEN"
	EnvURL       = "BLIH_URL"
	EnvUserAgent = "BLIH_USER_AGENT"
	EnvTimeout   = "BLIH_TIMEOUT"
	EnvProxy     = "BLIH_PROXY"
)

// Config holds the client settings.
type Config struct {
	User      string        `yaml:"user" toml:"user"`
	Token     string        `yaml:"token" toml:"token"`
	URL       string        `yaml:"url" toml:"url"`
	UserAgent string        `yaml:"user_agent" toml:"user_agent"`
	Timeout   time.Duration `yaml:"-" toml:"-"`
	Proxy     string        `yaml:"proxy" toml:"proxy"`
	SSHKey    string        `yaml:"ssh_key" toml:"ssh_key"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		URL:       client.DefaultBaseURL,
		UserAgent: client.DefaultUserAgent,
		Timeout:   client.DefaultTimeout,
		SSHKey:    client.DefaultSSHKeyPath(),
	}
}

// Load reads the configuration file at path on top of Default. The format
// follows the extension. Environment variables in the format ${VAR_NAME}
// are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads the first file found by SearchPaths. No file at all is
// not an error: Default is returned.
func LoadDefault() (*Config, error) {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		return Load(path)
	}

	return Default(), nil
}

// SearchPaths returns the candidate configuration files, in order.
func SearchPaths() []string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}

		dir = filepath.Join(home, ".config")
	}

	base := filepath.Join(dir, "blih")

	return []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.toml"),
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal([]byte(expanded), c)
	case ".toml":
		_, err = toml.Decode(expanded, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return c.parseTimeout()
}

// ApplyEnv overrides settings from the BLIH_* variables that lookup
// reports as set. Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	set(EnvUser, &c.User)
	set(EnvToken, &c.Token)
	set(EnvURL, &c.URL)
	set(EnvUserAgent, &c.UserAgent)
	set(EnvProxy, &c.Proxy)

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		c.TimeoutRaw = v
		if err := c.parseTimeout(); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
	}

	return nil
}

func (c *Config) parseTimeout() error {
	if c.TimeoutRaw == "" {
		return nil
	}

	d, err := time.ParseDuration(c.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing timeout %q: %w", c.TimeoutRaw, err)
	}

	c.Timeout = d

	return nil
}

// Validate checks the URLs and the timeout.
func (c *Config) Validate() error {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: url must be an absolute http or https URL: %q", ErrInvalid, c.URL)
		}
	}

	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("%w: proxy: %w", ErrInvalid, err)
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	}

	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(re.FindStringSubmatch(match)[1])
	})
}
