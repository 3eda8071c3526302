package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/structio/pkg/cache"
	"github.com/matzehuels/structio/pkg/codec"
)

// Record describes one archived structure.
type Record struct {
	ID         string    `json:"id" bson:"_id"`
	Version    uint8     `json:"version" bson:"version"`
	Size       int       `json:"size" bson:"size"`
	Roots      int       `json:"roots" bson:"roots"`
	Blocks     int       `json:"blocks" bson:"blocks"`
	Compressed bool      `json:"compressed" bson:"compressed"`
	SHA256     string    `json:"sha256" bson:"sha256"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Store persists encoded structures.
//
// Get returns an error with code NOT_FOUND for unknown ids and
// INVALID_INPUT for malformed ones.
type Store interface {
	Put(ctx context.Context, data []byte, rec Record) (Record, error)
	Get(ctx context.Context, id string) ([]byte, Record, error)
	Close() error
}

// NewRecord fills a record from the codec summary of data.
func NewRecord(data []byte, info *codec.Info, compressed bool) Record {
	return Record{
		Version:    info.Version,
		Size:       len(data),
		Roots:      info.Roots,
		Blocks:     info.Blocks,
		Compressed: compressed,
		SHA256:     cache.Hash(data),
	}
}

// stamp assigns the id and creation time.
func stamp(rec Record, now time.Time) Record {
	rec.ID = uuid.NewString()
	rec.CreatedAt = now.UTC()
	return rec
}
