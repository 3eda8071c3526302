package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %v, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatal("hit on empty cache")
	}
	want := []byte{0x06, 0xff, 0x00, 0x01}
	if err := c.Set(ctx, "k", want, 0); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(got) != string(want) {
		t.Fatalf("Get = %x, %v, %v", got, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("miss before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after expiry")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{1, 2}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get = %v, %v; want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries after Clear", len(entries))
	}
}

func TestFileCacheStatsAndPrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "keep", []byte("12345"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "short", []byte("xyz"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Hour)

	st, err := c.Stats(false)
	if err != nil {
		t.Fatal(err)
	}
	if want := (FileCacheStats{Entries: 1, Bytes: 5, Expired: 1}); st != want {
		t.Errorf("Stats(false) = %+v, want %+v", st, want)
	}
	if _, err := os.Stat(c.path("short")); err != nil {
		t.Error("Stats(false) removed an entry")
	}

	if _, err := c.Stats(true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry survived prune")
	}
	st, _ = c.Stats(false)
	if st.Expired != 0 || st.Entries != 1 {
		t.Errorf("after prune: %+v", st)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	c1 := k.ConvertKey("abc", ConvertKeyOpts{Version: 6})
	c2 := k.ConvertKey("abc", ConvertKeyOpts{Version: 5})
	c3 := k.ConvertKey("abc", ConvertKeyOpts{Version: 6, Compress: true})
	if c1 == c2 || c1 == c3 {
		t.Error("different ConvertKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(c1, "convert:") {
		t.Errorf("ConvertKey = %s", c1)
	}

	g1 := k.GraphKey("abc", GraphKeyOpts{Format: "svg"})
	g2 := k.GraphKey("abc", GraphKeyOpts{Format: "dot"})
	if g1 == g2 {
		t.Error("different GraphKeyOpts should produce different keys")
	}

	i1 := k.InspectKey("abc", "types1")
	i2 := k.InspectKey("abc", "types2")
	if i1 == i2 {
		t.Error("type table should be part of the inspect key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "staging:")
	plain := NewDefaultKeyer()

	got := scoped.GraphKey("abc", GraphKeyOpts{Format: "svg"})
	want := "staging:" + plain.GraphKey("abc", GraphKeyOpts{Format: "svg"})
	if got != want {
		t.Errorf("GraphKey = %s, want %s", got, want)
	}
	if !strings.HasPrefix(scoped.ConvertKey("abc", ConvertKeyOpts{}), "staging:convert:") {
		t.Error("ConvertKey not prefixed")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	errPermanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"permanent", 5, errPermanent, 1, errPermanent},
		{"transient", 1, Retryable(ErrNetwork), 2, nil},
		{"exhausted", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, time.Hour, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRedisBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
	plain := errors.New("WRONGTYPE")
	if IsRetryable(classify(plain)) {
		t.Error("protocol errors should not be retried")
	}
	netErr := &timeoutError{}
	if err := classify(netErr); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("classify(net error) = %v", err)
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
