package ports

import "context"

// KeyedExecutor runs fn so that calls sharing a key never overlap.
type KeyedExecutor interface {
	Do(ctx context.Context, key string, fn func(context.Context) error) error
}
