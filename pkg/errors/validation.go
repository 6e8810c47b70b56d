package errors

import (
	"strings"
	"unicode"
)

// maxKeyLength bounds store keys so they fit every backend (S3 allows 1024).
const maxKeyLength = 512

// ValidateKey validates a store key for safety.
// Keys are used as file paths, object names and document ids, so they are
// held to the strictest rules of all backends:
//   - No empty keys
//   - No control characters or null bytes
//   - No path traversal sequences (..)
//   - No backslashes
//   - Maximum length of 512 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateRelativeKey validates a key that must not escape its namespace.
// On top of [ValidateKey] it rejects absolute keys, which remote stores
// and scoped prefixes would otherwise interpret as a new root.
func ValidateRelativeKey(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidKey, "key must be relative (cannot start with /)")
	}
	return nil
}

// ValidateMaxNodes validates a configured node limit.
func ValidateMaxNodes(n, ceiling int) error {
	if n <= 0 {
		return New(ErrCodeInvalidConfig, "max nodes must be positive, got %d", n)
	}
	if n > ceiling {
		return New(ErrCodeInvalidConfig, "max nodes %d exceeds the hard limit %d", n, ceiling)
	}
	return nil
}
