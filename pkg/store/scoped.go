package store

import "context"

// ScopedStore wraps a Store with a key prefix for multi-tenant isolation.
//
// Example usage:
//
//	// Lists uploaded through the HTTP API
//	api := NewScopedStore(backend, "api/")
//
//	// Lists written by CI
//	ci := NewScopedStore(backend, "ci/")
type ScopedStore struct {
	inner  Store
	prefix string
}

// NewScopedStore creates a store that prepends prefix to every key.
func NewScopedStore(inner Store, prefix string) *ScopedStore {
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Get reads prefix+key from the inner store.
func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Put writes prefix+key to the inner store.
func (s *ScopedStore) Put(ctx context.Context, key string, data []byte) error {
	return s.inner.Put(ctx, s.prefix+key, data)
}

// Delete removes prefix+key from the inner store.
func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner store.
func (s *ScopedStore) Close() error {
	return s.inner.Close()
}

// Prefix returns the key prefix.
func (s *ScopedStore) Prefix() string { return s.prefix }

// Ensure ScopedStore implements Store.
var _ Store = (*ScopedStore)(nil)
