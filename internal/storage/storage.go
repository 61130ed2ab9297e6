// Package storage holds the durable client-side state of the console: a plain string
// key-value store and a cookie jar layered on top of it.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage: store is closed")

// KV is a simple string key-value store. A missing key is reported through the boolean,
// never as an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
