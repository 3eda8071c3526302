package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/observability"
)

const mongoBackend = "mongo"

// MongoConfig contains connection settings for [MongoStore].
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // default "structio"
	Collection string // default "structures"
	Timeout    time.Duration
}

func (c *MongoConfig) setDefaults() {
	if c.URI == "" {
		c.URI = "mongodb://localhost:27017"
	}
	if c.Database == "" {
		c.Database = "structio"
	}
	if c.Collection == "" {
		c.Collection = "structures"
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
}

// MongoStore keeps records and payloads in one MongoDB collection. Payloads
// are stored inline as binary, so a structure must fit in a 16 MiB document.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

type mongoDoc struct {
	Record `bson:",inline"`
	Data   []byte `bson:"data"`
}

// NewMongoStore connects, pings and ensures the sha256 index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	cfg.setDefaults()

	cctx, cancel := context.WithTimeout(ctx, 2*cfg.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    cfg.Timeout,
	}
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "sha256", Value: 1}},
		Options: options.Index().SetName("sha256"),
	}
	if _, err := s.collection.Indexes().CreateOne(cctx, idx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Put(ctx context.Context, data []byte, rec Record) (_ Record, err error) {
	defer func() { observability.Store().OnStorePut(ctx, mongoBackend, len(data), err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec = stamp(rec, time.Now())
	if _, err := s.collection.InsertOne(ctx, mongoDoc{Record: rec, Data: data}); err != nil {
		return Record{}, fmt.Errorf("insert: %w", err)
	}
	return rec, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (data []byte, rec Record, err error) {
	defer func() { observability.Store().OnStoreGet(ctx, mongoBackend, err == nil, err) }()

	if err := errors.ValidateStoreKey(id); err != nil {
		return nil, Record{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc mongoDoc
	err = s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, Record{}, errors.New(errors.ErrCodeNotFound, "structure %s not found", id)
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("find: %w", err)
	}
	return doc.Data, doc.Record, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
