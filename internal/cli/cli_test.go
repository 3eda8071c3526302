package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/structio/pkg/codec"
	sio "github.com/matzehuels/structio/pkg/io"
	"github.com/matzehuels/structio/pkg/pipeline"
)

// run executes one command line against a fresh CLI and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestCommandsRoundTrip(t *testing.T) {
	dir := isolate(t)
	bin := filepath.Join(dir, "snake.bin")
	js := filepath.Join(dir, "snake.json")
	v6 := filepath.Join(dir, "snake6.bin")

	if _, err := run(t, "example", "snake", "--blocks", "20", "--version", "4", "-o", bin); err != nil {
		t.Fatalf("example: %v", err)
	}
	if _, err := run(t, "decode", bin, "-o", js); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := run(t, "encode", js, "--compress", "-o", v6); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := run(t, "inspect", "--json", v6)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var s pipeline.Summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("inspect output %q: %v", out, err)
	}
	if s.Version != codec.Latest || s.Blocks != 20 || !s.Compressed {
		t.Errorf("summary = %+v", s)
	}

	out, err = run(t, "decode", v6)
	if err != nil {
		t.Fatalf("decode to stdout: %v", err)
	}
	b, err := sio.ReadJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(b.Blocks) != 20 {
		t.Errorf("blocks = %d", len(b.Blocks))
	}
}

func TestConvertCommand(t *testing.T) {
	dir := isolate(t)
	a := filepath.Join(dir, "a.bin")
	v := filepath.Join(dir, "v.bin")
	if _, err := run(t, "example", "snake", "-o", a); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "example", "vehicle", "-o", v); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if _, err := run(t, "convert", "--version", "2", "-o", outDir, a, v); err != nil {
		t.Fatalf("convert: %v", err)
	}
	for _, name := range []string{"a.v2.bin", "v.v2.bin"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatal(err)
		}
		if data[0] != 2 {
			t.Errorf("%s: version byte %d", name, data[0])
		}
	}

	if _, err := run(t, "convert", "--version", "9", a); err == nil {
		t.Error("convert accepted version 9")
	}
	if _, err := run(t, "convert", filepath.Join(dir, "missing.bin")); err == nil {
		t.Error("convert of a missing file succeeded")
	}
}

func TestGraphAndTypesCommands(t *testing.T) {
	dir := isolate(t)
	bin := filepath.Join(dir, "v.bin")
	if _, err := run(t, "example", "vehicle", "-o", bin); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "graph", "-f", "dot", "-o", "-", bin)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("graph output = %q", out)
	}

	out, err = run(t, "types", "--json")
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	var types []map[string]any
	if err := json.Unmarshal([]byte(out), &types); err != nil || len(types) == 0 {
		t.Errorf("types output %q: %v", out, err)
	}
}

func TestCachePathHonorsConfig(t *testing.T) {
	dir := isolate(t)
	custom := filepath.Join(dir, "elsewhere")
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\ndir = \""+filepath.ToSlash(custom)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(custom) {
		t.Errorf("cache path = %q, want %q", out, custom)
	}
}

func TestNoCacheFlag(t *testing.T) {
	dir := isolate(t)
	bin := filepath.Join(dir, "s.bin")
	if _, err := run(t, "example", "snake", "-o", bin); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--no-cache", "inspect", "--json", bin); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", appName)); !os.IsNotExist(err) {
		t.Errorf("cache directory created with --no-cache: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	for shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			out, err := run(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("%s script does not mention %s", shell, appName)
			}
		})
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell accepted")
	}
}

// captureReport redirects the human-oriented printers for the rest of the
// test.
func captureReport(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestCacheStatsAndPrune(t *testing.T) {
	dir := isolate(t)
	bin := filepath.Join(dir, "snake.bin")
	if _, err := run(t, "example", "snake", "--blocks", "8", "-o", bin); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "inspect", "--json", bin); err != nil {
		t.Fatal(err)
	}

	report := captureReport(t)
	if _, err := run(t, "cache", "stats"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(report.String(), "Entries") || !strings.Contains(report.String(), "1") {
		t.Errorf("cache stats report = %q", report.String())
	}

	report.Reset()
	if _, err := run(t, "cache", "prune"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(report.String(), "Removed 0 expired entries") {
		t.Errorf("cache prune report = %q", report.String())
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}
}
