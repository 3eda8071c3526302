package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// headerSize is the expiry prefix of every cache file: unix nanoseconds,
// little-endian, 0 when the entry never expires.
const headerSize = 8

// FileCache keeps one file per entry below dir, sharded by the first two hex
// digits of the key hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens (and if needed creates) a file cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case c.expired(raw):
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerSize:], true, nil
}

// Set replaces the entry atomically: the value is written to a sibling temp
// file and renamed over the old one.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiry uint64
	if ttl > 0 {
		expiry = uint64(c.now().Add(ttl).UnixNano())
	}
	raw := make([]byte, headerSize, headerSize+len(data))
	binary.LittleEndian.PutUint64(raw, expiry)
	raw = append(raw, data...)

	path := c.path(key)
	shard := filepath.Dir(path)
	if err := os.MkdirAll(shard, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(shard, ".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear drops every entry.
func (c *FileCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// FileCacheStats describes the entries on disk.
type FileCacheStats struct {
	Entries int
	Bytes   int64
	Expired int
}

// Stats walks the cache directory. With prune set, expired and unreadable
// entries are removed as they are found and are still counted in Expired.
func (c *FileCache) Stats(prune bool) (FileCacheStats, error) {
	var st FileCacheStats
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if c.expired(raw) {
			st.Expired++
			if prune {
				return os.Remove(path)
			}
			return nil
		}
		st.Entries++
		st.Bytes += int64(len(raw) - headerSize)
		return nil
	})
	return st, err
}

func (c *FileCache) Close() error { return nil }

// expired reports whether raw is too short to hold a header or its expiry
// has passed.
func (c *FileCache) expired(raw []byte) bool {
	if len(raw) < headerSize {
		return true
	}
	exp := int64(binary.LittleEndian.Uint64(raw))
	return exp != 0 && c.now().UnixNano() > exp
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}

var _ Cache = (*FileCache)(nil)
