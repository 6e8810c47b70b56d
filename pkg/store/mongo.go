package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

// MongoStore keeps each blob as one document keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type blobDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	Size      int       `bson:"size"`
	Hash      string    `bson:"sha256"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to cfg.URI and pings the deployment. Database and
// collection default to "randlist" and "lists".
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "mongo store needs a uri")
	}
	db, coll := cfg.Database, cfg.Collection
	if db == "" {
		db = "randlist"
	}
	if coll == "" {
		coll = "lists"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeIO, err, "ping mongo")
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

// Get reads the document for key.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc blobDocument
	err := RetryWithBackoff(ctx, func() error {
		return mongoError(s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc))
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "mongo find %s", key)
	}
	return doc.Data, nil
}

// Put upserts the document for key.
func (s *MongoStore) Put(ctx context.Context, key string, data []byte) error {
	if err := errs.ValidateKey(key); err != nil {
		return err
	}
	doc := blobDocument{
		Key:       key,
		Data:      data,
		Size:      len(data),
		Hash:      Hash(data),
		UpdatedAt: time.Now().UTC(),
	}
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
		return mongoError(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "mongo upsert %s", key)
	}
	return nil
}

// Delete removes the document for key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
		return mongoError(err)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "mongo delete %s", key)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func mongoError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
