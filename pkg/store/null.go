package store

import "context"

// NullStore is a no-op store that never keeps anything.
// Useful for dry runs that only measure the encoder.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Get always reports the key as missing.
func (s *NullStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, notFound(key)
}

// Put does nothing.
func (s *NullStore) Put(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
