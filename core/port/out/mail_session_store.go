package out

import (
	"context"
	"time"
)

// SessionStore is a short-lived key/value store for inbox snapshots and
// OAuth state.
type SessionStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	// Take returns the value and removes it in one step.
	Take(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
