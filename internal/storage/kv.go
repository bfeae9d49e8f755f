// Package storage provides the durable key-value store the client keeps its
// session and cart in. Values are opaque strings; absence of a key is a normal
// state and is reported through the ok result rather than an error.
package storage

import (
	"context"
	"errors"
)

// KV is a string-keyed persistent store.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrClosed is returned when operations are attempted on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Scoped prefixes every key with namespace so several clients can share one
// backend. An empty namespace returns kv unchanged.
func Scoped(kv KV, namespace string) KV {
	if namespace == "" {
		return kv
	}
	return &scoped{kv: kv, prefix: namespace + ":"}
}

type scoped struct {
	kv     KV
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Remove(ctx context.Context, key string) error {
	return s.kv.Remove(ctx, s.prefix+key)
}

func (s *scoped) Close() error {
	return s.kv.Close()
}
