package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfigFile tests YAML file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads a valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".bsmiweb")
		content := `listen: ":8080"
database: /tmp/test.db
freshness: 12h
refresh_workers: 4
base_url: https://bsmi.example.com
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Listen != ":8080" {
			t.Errorf("Listen: got %q, expected %q", cf.Listen, ":8080")
		}
		if cf.RefreshWorkers != 4 {
			t.Errorf("RefreshWorkers: got %d, expected 4", cf.RefreshWorkers)
		}
	})

	t.Run("missing file yields ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("got %v, expected ErrConfigNotFound", err)
		}
	})

	t.Run("malformed YAML yields an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".bsmiweb")
		if err := os.WriteFile(path, []byte("listen: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

// TestFileApply tests merging file overrides into a config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("non-empty fields override defaults", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		f := &File{
			Listen:    ":9000",
			Database:  "/data/bsmi.db",
			Freshness: "6h",
			FeedURL:   "https://feed.example.com",
		}

		if err := f.Apply(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ListenAddr != ":9000" {
			t.Errorf("ListenAddr: got %q", c.ListenAddr)
		}
		if c.DBPath != "/data/bsmi.db" {
			t.Errorf("DBPath: got %q", c.DBPath)
		}
		if c.Freshness != 6*time.Hour {
			t.Errorf("Freshness: got %v", c.Freshness)
		}
		if c.FeedURL != "https://feed.example.com" {
			t.Errorf("FeedURL: got %q", c.FeedURL)
		}
	})

	t.Run("empty fields keep defaults", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		if err := (&File{}).Apply(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ListenAddr != DefaultListenAddr {
			t.Errorf("ListenAddr: got %q, expected default", c.ListenAddr)
		}
		if c.Freshness != DefaultFreshness {
			t.Errorf("Freshness: got %v, expected default", c.Freshness)
		}
	})

	t.Run("unparsable freshness is reported", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		if err := (&File{Freshness: "soon"}).Apply(c); err == nil {
			t.Error("expected error for unparsable duration")
		}
	})
}

// TestFindConfigFile tests the search order.
func TestFindConfigFile(t *testing.T) {
	t.Run("explicit path wins when it exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("listen: :1\n"), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("got %q, expected %q", got, path)
		}
	})

	t.Run("missing explicit path yields empty string", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("got %q, expected empty string", got)
		}
	})
}
