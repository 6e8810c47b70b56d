// Package store persists encoded sequences as opaque byte blobs under string
// keys.
//
// # Overview
//
// A [Store] is the byte sink and source of the codec: the pipeline encodes a
// sequence, puts the bytes under a key, and later gets them back for
// decoding. Stores never look inside the bytes.
//
// # Backends
//
//   - [FileStore]: keys are paths relative to a root directory; writes are
//     atomic through a temp file and rename
//   - [MemoryStore]: a map, for tests and the HTTP server's default
//   - [NullStore]: discards writes, for dry runs
//   - [RedisStore]: one string value per key, with an optional TTL
//   - [MongoStore]: one document per key in a collection
//   - [S3Store]: one object per key in a bucket
//   - [PostgresStore]: one bytea row per key
//
// [ScopedStore] prefixes every key, so several tenants or environments can
// share a backend. [Open] builds a backend from a [Config].
//
// # Errors
//
// Get returns [ErrNotFound] (wrapped, test with errors.Is) for absent keys.
// Network backends wrap transient failures with [Retryable] and retry them
// through [RetryWithBackoff].
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/observability"
)

// Store persists byte blobs under string keys.
type Store interface {
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the data stored under key, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections held by the backend.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendNull     = "null"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Backends lists every backend name, in the order shown by help text.
var Backends = []string{
	BackendFile, BackendMemory, BackendNull,
	BackendRedis, BackendMongo, BackendS3, BackendPostgres,
}

// Config selects and configures a backend.
type Config struct {
	Backend  string         `toml:"backend"`
	Prefix   string         `toml:"prefix"`
	Dir      string         `toml:"dir"`
	Redis    RedisConfig    `toml:"redis"`
	Mongo    MongoConfig    `toml:"mongo"`
	S3       S3Config       `toml:"s3"`
	Postgres PostgresConfig `toml:"postgres"`
}

// RedisConfig configures [RedisStore].
type RedisConfig struct {
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	TTL      time.Duration `toml:"ttl"`
}

// MongoConfig configures [MongoStore].
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// S3Config configures [S3Store].
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// PostgresConfig configures [PostgresStore].
type PostgresConfig struct {
	URL   string `toml:"url"`
	Table string `toml:"table"`
}

// Open creates the backend named by cfg.Backend, wrapped in a [ScopedStore]
// when cfg.Prefix is set and instrumented with the registered store hooks.
// An empty backend name means [BackendFile].
func Open(ctx context.Context, cfg Config) (Store, error) {
	s, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Prefix != "" {
		s = NewScopedStore(s, cfg.Prefix)
	}
	return Instrument(s, backendName(cfg)), nil
}

func open(ctx context.Context, cfg Config) (Store, error) {
	switch backendName(cfg) {
	case BackendFile:
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		return NewFileStore(filepath.Clean(dir))
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendNull:
		return NewNullStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	case BackendS3:
		return NewS3Store(ctx, cfg.S3)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.Postgres)
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unknown store backend %q (want one of %v)", cfg.Backend, Backends)
	}
}

func backendName(cfg Config) string {
	if cfg.Backend == "" {
		return BackendFile
	}
	return cfg.Backend
}

// instrumented reports every operation to the registered store hooks.
type instrumented struct {
	Store
	backend string
}

// Instrument wraps s so that every operation is reported to
// [observability.Store] under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Put(ctx context.Context, key string, data []byte) error {
	if err := s.Store.Put(ctx, key, data); err != nil {
		return err
	}
	observability.Store().OnStorePut(ctx, s.backend, len(data))
	return nil
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.Store.Get(ctx, key)
	switch {
	case IsNotFound(err):
		observability.Store().OnStoreMiss(ctx, s.backend)
	case err == nil:
		observability.Store().OnStoreHit(ctx, s.backend, len(data))
	}
	return data, err
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	if err := s.Store.Delete(ctx, key); err != nil {
		return err
	}
	observability.Store().OnStoreDelete(ctx, s.backend)
	return nil
}

// Unwrap returns the instrumented backend.
func (s *instrumented) Unwrap() Store { return s.Store }

func (s *instrumented) String() string { return fmt.Sprintf("%s store", s.backend) }
