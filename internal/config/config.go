// Package config holds daemon-wide configuration for the ascii-chat
// session daemon, adapted from the teacher's node.Config
// (reference/node/config.go): same defaulting and validation style,
// generalized from node/network/sync settings to render/session
// settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// InsecureNoHostIdentityCheckEnv is the well-known environment variable
// name from spec.md §6 that disables host-identity pinning. Load-bearing
// for tests only; peers are still authenticated when verification is
// enabled.
const InsecureNoHostIdentityCheckEnv = "ASCIICHAT_INSECURE_NO_HOST_IDENTITY_CHECK"

// Config holds all configuration for one asciichatd process.
type Config struct {
	// DataDir is the root directory for the known-hosts file and any
	// other on-disk state.
	DataDir string

	// Name is a human-readable node identifier used in logs.
	Name string

	// ListenAddr is the TCP address the daemon accepts connections on
	// (e.g. ":7744").
	ListenAddr string

	// Palette is the glyph string used as the luminance→glyph mapping.
	Palette string

	// RenderModeName selects "mono", "256fg", "256bg", "truefg", or
	// "truebg".
	RenderModeName string

	// MaxPayloadSize bounds a single packet payload, per spec §3
	// (default 16 MiB).
	MaxPayloadSize uint32

	// HandshakeTimeout is a handshake deadline checked by Validate. The
	// cmd/asciichatd drivers do not pass it on: they set
	// handshake.Config.PhaseTimeout directly, and that one deadline
	// covers all handshake phases together.
	HandshakeTimeout time.Duration

	// VerificationEnabled toggles the optional peer-authentication phase
	// (spec §4.8 phase 4).
	VerificationEnabled bool

	// LogLevel controls log verbosity: debug, info, warn, error.
	LogLevel string

	// Metrics enables the metrics collection subsystem and its
	// Prometheus exporter.
	Metrics bool

	// MetricsAddr is the HTTP listen address for the Prometheus exporter
	// when Metrics is enabled.
	MetricsAddr string
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".asciichat"
	}
	return filepath.Join(home, ".asciichat")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:             defaultDataDir(),
		Name:                "asciichatd",
		ListenAddr:          ":7744",
		Palette:             " .:-=+*#%@",
		RenderModeName:      "truefg",
		MaxPayloadSize:      16 * 1024 * 1024,
		HandshakeTimeout:    15 * time.Second,
		VerificationEnabled: false,
		LogLevel:            "info",
		Metrics:             false,
		MetricsAddr:         "127.0.0.1:9744",
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if len(c.Palette) == 0 {
		return errors.New("config: palette must not be empty")
	}
	if c.MaxPayloadSize == 0 {
		return errors.New("config: max payload size must be positive")
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("config: handshake timeout must be positive")
	}
	switch c.RenderModeName {
	case "mono", "256fg", "256bg", "truefg", "truebg":
	default:
		return fmt.Errorf("config: unknown render mode %q", c.RenderModeName)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// InitDataDir creates the data directory if it does not already exist.
func (c *Config) InitDataDir() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		return fmt.Errorf("config: create datadir: %w", err)
	}
	return nil
}

// ResolvePath resolves a path relative to the data directory.
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// KnownHostsPath returns the path to the known-hosts file (spec §6).
func (c *Config) KnownHostsPath() string {
	return c.ResolvePath("known_hosts")
}

// InsecureHostCheckDisabled reports whether the load-bearing environment
// variable from spec §6 is set.
func InsecureHostCheckDisabled() bool {
	return os.Getenv(InsecureNoHostIdentityCheckEnv) != ""
}
