package query

import "context"

// ViewCache is the read-through cache used by the query side.
type ViewCache[T any] interface {
	Get(ctx context.Context, key string) (*T, bool)
	Set(ctx context.Context, key string, value *T)
}
