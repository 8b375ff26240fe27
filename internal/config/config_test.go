package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()

	if c.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr: got %q, expected %q", c.ListenAddr, DefaultListenAddr)
	}
	if c.Freshness != DefaultFreshness {
		t.Errorf("Freshness: got %v, expected %v", c.Freshness, DefaultFreshness)
	}
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout: got %v, expected %v", c.Timeout, DefaultTimeout)
	}
	if c.RefreshWorkers != DefaultRefreshWorkers {
		t.Errorf("RefreshWorkers: got %d, expected %d", c.RefreshWorkers, DefaultRefreshWorkers)
	}
	if c.ImportBatchSize != DefaultImportBatchSize {
		t.Errorf("ImportBatchSize: got %d, expected %d", c.ImportBatchSize, DefaultImportBatchSize)
	}
	if c.DBPath == "" {
		t.Error("DBPath should default to the XDG data directory")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestConfigValidate tests validation error cases.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{
			name:     "empty listen address",
			mutate:   func(c *Config) { c.ListenAddr = "" },
			expected: ErrNoListenAddr,
		},
		{
			name:     "zero freshness",
			mutate:   func(c *Config) { c.Freshness = 0 },
			expected: ErrInvalidFreshness,
		},
		{
			name:     "negative timeout",
			mutate:   func(c *Config) { c.Timeout = -time.Second },
			expected: ErrInvalidTimeout,
		},
		{
			name:     "zero refresh workers",
			mutate:   func(c *Config) { c.RefreshWorkers = 0 },
			expected: ErrInvalidRefreshWorkers,
		},
		{
			name:     "zero import batch size",
			mutate:   func(c *Config) { c.ImportBatchSize = 0 },
			expected: ErrInvalidBatchSize,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.expected) {
				t.Errorf("got %v, expected %v", err, tt.expected)
			}
		})
	}
}

// TestApplyEnv tests environment variable overrides.
func TestApplyEnv(t *testing.T) {
	t.Run("DATABASE_URL overrides the database path", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "file:/var/lib/bsmiweb/data.db")

		c := NewConfig()
		c.ApplyEnv()
		if c.DBPath != "/var/lib/bsmiweb/data.db" {
			t.Errorf("DBPath: got %q, expected the file: prefix stripped", c.DBPath)
		}
	})

	t.Run("PORT overrides the listen port", func(t *testing.T) {
		t.Setenv("PORT", "8080")

		c := NewConfig()
		c.ApplyEnv()
		if c.ListenAddr != ":8080" {
			t.Errorf("ListenAddr: got %q, expected %q", c.ListenAddr, ":8080")
		}
	})

	t.Run("unset variables keep defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("PORT", "")

		c := NewConfig()
		c.ApplyEnv()
		if c.ListenAddr != DefaultListenAddr {
			t.Errorf("ListenAddr: got %q, expected default", c.ListenAddr)
		}
	})
}

// TestXDGDirs tests XDG path construction.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("XDGDataDir should not be empty")
	}
	if XDGConfigDir() == "" {
		t.Error("XDGConfigDir should not be empty")
	}
}
