package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/observability"
)

const fileBackend = "file"

// FileStore keeps each structure as <id>.bin next to an <id>.json record.
type FileStore struct {
	dir string
}

// NewFileStore opens a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(ctx context.Context, data []byte, rec Record) (_ Record, err error) {
	defer func() { observability.Store().OnStorePut(ctx, fileBackend, len(data), err) }()

	rec = stamp(rec, time.Now())
	meta, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}
	if err := os.WriteFile(s.path(rec.ID, ".bin"), data, 0o644); err != nil {
		return Record{}, err
	}
	if err := os.WriteFile(s.path(rec.ID, ".json"), meta, 0o644); err != nil {
		os.Remove(s.path(rec.ID, ".bin"))
		return Record{}, err
	}
	return rec, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (data []byte, rec Record, err error) {
	defer func() { observability.Store().OnStoreGet(ctx, fileBackend, err == nil, err) }()

	if err := errors.ValidateStoreKey(id); err != nil {
		return nil, Record{}, err
	}
	meta, err := os.ReadFile(s.path(id, ".json"))
	if os.IsNotExist(err) {
		return nil, Record{}, errors.New(errors.ErrCodeNotFound, "structure %s not found", id)
	}
	if err != nil {
		return nil, Record{}, err
	}
	if err := json.Unmarshal(meta, &rec); err != nil {
		return nil, Record{}, errors.Wrap(errors.ErrCodeInternal, err, "record %s", id)
	}
	data, err = os.ReadFile(s.path(id, ".bin"))
	if err != nil {
		return nil, Record{}, errors.Wrap(errors.ErrCodeInternal, err, "structure %s", id)
	}
	return data, rec, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(id, ext string) string {
	return filepath.Join(s.dir, id+ext)
}

var _ Store = (*FileStore)(nil)
