package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadConfig(t *testing.T) {
	logger := log.New(&bytes.Buffer{})

	t.Run("implicit missing file uses defaults", func(t *testing.T) {
		cfg, err := readConfig(filepath.Join(t.TempDir(), "none.toml"), false, logger)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Version != codec.Latest || cfg.Cache.Backend != "file" || cfg.Server.Addr != ":8080" {
			t.Errorf("defaults = %+v", cfg)
		}
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := readConfig(filepath.Join(t.TempDir(), "none.toml"), true, logger)
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("err = %v, want FILE_NOT_FOUND", err)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		path := writeConfig(t, `
version = 3
compress = true

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[store]
backend = "mongo"
database = "archive"
`)
		cfg, err := readConfig(path, true, logger)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Version != 3 || !cfg.Compress {
			t.Errorf("version/compress = %d/%v", cfg.Version, cfg.Compress)
		}
		if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
			t.Errorf("cache = %+v", cfg.Cache)
		}
		if cfg.Store.Backend != "mongo" || cfg.Store.Database != "archive" {
			t.Errorf("store = %+v", cfg.Store)
		}
		if cfg.Server.MaxBody != 32<<20 {
			t.Errorf("unset server section lost its defaults: %+v", cfg.Server)
		}
	})

	t.Run("bad version", func(t *testing.T) {
		_, err := readConfig(writeConfig(t, "version = 7\n"), true, logger)
		if !errors.Is(err, errors.ErrCodeUnsupportedVersion) {
			t.Errorf("err = %v, want UNSUPPORTED_VERSION", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := readConfig(writeConfig(t, "version = \n"), true, logger)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("err = %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("unknown keys warn", func(t *testing.T) {
		var buf bytes.Buffer
		if _, err := readConfig(writeConfig(t, "colour = \"red\"\n"), true, log.New(&buf)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "colour") {
			t.Errorf("no warning for unknown key: %q", buf.String())
		}
	})
}
