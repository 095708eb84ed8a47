package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. The CLI uses it for --no-cache and the "none"
// backend, and [pipeline.NewRunner] falls back to it when given a nil cache,
// so every build loads and rebuilds from the snapshot.
//
// NullCache does not implement [Clearer], so "mutuals cache clear" reports the
// cache as disabled.
//
// [pipeline.NewRunner]: github.com/matzehuels/mutuals/pkg/pipeline.NewRunner
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
