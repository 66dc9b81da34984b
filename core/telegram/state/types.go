package state

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when a value is addressed without a key.
var ErrEmptyKey = errors.New("state: empty key")

// Store holds string values per (user, key). Writes to the same key are last-writer-wins.
type Store interface {
	Get(ctx context.Context, userID int64, key string) (string, bool, error)
	Set(ctx context.Context, userID int64, key, value string) error
	Clear(ctx context.Context, userID int64, key string) error
	Close() error
}
