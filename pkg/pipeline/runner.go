package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/randlist/pkg/codec"
	rlio "github.com/matzehuels/randlist/pkg/io"
	"github.com/matzehuels/randlist/pkg/list"
	"github.com/matzehuels/randlist/pkg/observability"
	"github.com/matzehuels/randlist/pkg/store"
)

// Runner executes pipeline stages against one store.
// Both CLI and API use this to avoid duplicating the round trip logic.
//
// The Runner is stateless except for its store, logger and node limit.
// Multiple goroutines can safely use the same Runner when the store is safe
// for concurrent use.
type Runner struct {
	Store    store.Store
	Logger   *log.Logger
	MaxNodes int
}

// NewRunner creates a runner.
// If st is nil, a NullStore is used and only in-memory round trips succeed.
// If logger is nil, the default logger is used.
func NewRunner(st store.Store, logger *log.Logger) *Runner {
	if st == nil {
		st = store.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    st,
		Logger:   logger,
		MaxNodes: list.MaxNodes,
	}
}

// Build parses text from r into a sequence. Lines past the node limit are
// dropped and reported in the log.
func (r *Runner) Build(ctx context.Context, in io.Reader) (*list.Sequence, int, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageBuild, 0)
	start := time.Now()

	guard := list.NewGuard(r.MaxNodes)
	s, err := rlio.BuildText(in, rlio.WithGuard(guard))
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnStageComplete(ctx, observability.StageBuild, 0, elapsed, err)
		return nil, 0, err
	}
	hooks.OnStageComplete(ctx, observability.StageBuild, s.Len(), elapsed, nil)

	r.Logger.Debug("built sequence",
		"nodes", s.Len(),
		"cross_refs", s.CrossRefCount(),
		"duration", elapsed)
	if guard.Full() {
		r.Logger.Warn("input reached the node limit; further lines ignored", "limit", guard.Limit())
	}
	return s, guard.Dropped(), nil
}

// Encode serializes s and stores it under key. An empty key skips the
// store.
func (r *Runner) Encode(ctx context.Context, s *list.Sequence, key string) (*Encoded, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageEncode, s.Len())
	start := time.Now()

	data, err := codec.Marshal(s)
	if err == nil && key != "" {
		err = r.Store.Put(ctx, key, data)
	}
	elapsed := time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageEncode, len(data), elapsed, err)
	if err != nil {
		return nil, err
	}

	out := &Encoded{Key: key, Data: data, Hash: store.Hash(data)}
	r.Logger.Debug("encoded sequence",
		"nodes", s.Len(),
		"bytes", len(data),
		"key", key,
		"duration", elapsed)
	return out, nil
}

// Decode reads the stream stored under key and reconstructs the sequence.
func (r *Runner) Decode(ctx context.Context, key string) (*list.Sequence, error) {
	data, err := r.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return r.DecodeBytes(ctx, data)
}

// DecodeBytes reconstructs a sequence from an encoded stream.
func (r *Runner) DecodeBytes(ctx context.Context, data []byte) (*list.Sequence, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageDecode, len(data))
	start := time.Now()

	s, err := codec.Unmarshal(data, codec.WithMaxNodes(r.MaxNodes))
	elapsed := time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageDecode, len(data), elapsed, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("decoded sequence",
		"nodes", s.Len(),
		"bytes", len(data),
		"duration", elapsed)
	return s, nil
}

// Verify compares a reconstructed sequence with its original.
func (r *Runner) Verify(ctx context.Context, original, decoded *list.Sequence) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, observability.StageVerify, original.Len())
	start := time.Now()

	err := list.Compare(original, decoded)
	elapsed := time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageVerify, original.Len(), elapsed, err)
	if err != nil {
		return err
	}
	r.Logger.Debug("verified round trip", "nodes", original.Len(), "duration", elapsed)
	return nil
}

// RoundTrip builds a sequence from in, stores its encoding under key, reads
// it back, decodes it and verifies the reconstruction. With an empty key the
// stream never leaves memory. A cancelled ctx stops it between stages with
// ctx.Err().
func (r *Runner) RoundTrip(ctx context.Context, in io.Reader, key string) (*Result, error) {
	result := &Result{Key: key}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 1: Build
	start := time.Now()
	s, dropped, err := r.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	result.Original = s
	result.Stats.BuildTime = time.Since(start)
	result.Stats.NodeCount = s.Len()
	result.Stats.CrossRefs = s.CrossRefCount()
	result.Stats.PayloadBytes = s.PayloadSize()
	result.Stats.Dropped = dropped

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Encode
	start = time.Now()
	enc, err := r.Encode(ctx, s, key)
	if err != nil {
		return nil, err
	}
	result.Hash = enc.Hash
	result.Stats.EncodedBytes = len(enc.Data)
	result.Stats.EncodeTime = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Decode
	start = time.Now()
	var decoded *list.Sequence
	if key == "" {
		decoded, err = r.DecodeBytes(ctx, enc.Data)
	} else {
		decoded, err = r.Decode(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	result.Decoded = decoded
	result.Stats.DecodeTime = time.Since(start)

	// Stage 4: Verify
	start = time.Now()
	if err := r.Verify(ctx, s, decoded); err != nil {
		return nil, err
	}
	result.Stats.VerifyTime = time.Since(start)

	r.Logger.Info("round trip complete",
		"nodes", result.Stats.NodeCount,
		"bytes", result.Stats.EncodedBytes,
		"duration", result.Stats.Total())
	return result, nil
}

// Close releases resources held by the runner (primarily the store).
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}
