// Package cache stores built models and rendered artifacts between runs.
//
// Backends implement [Cache]: [NullCache] disables caching, [FileCache] keeps
// entries under the user's cache directory, and [RedisCache] shares them
// between server instances. Keys come from a [Keyer] so the same inputs map
// to the same entry regardless of backend.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/mutuals/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit; a miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	ModelTTL    = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Key types reported to cache hooks.
const (
	KeyTypeModel    = "model"
	KeyTypeArtifact = "artifact"
)

// =============================================================================
// Keys
// =============================================================================

// ModelKeyOpts are the build options that change the normalized adjacency.
type ModelKeyOpts struct {
	Separator string `json:"separator"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Selected string `json:"selected,omitempty"` // kind:id of the selected node
}

// Keyer derives cache keys.
type Keyer interface {
	// ModelKey keys the normalized adjacency built from a snapshot.
	ModelKey(snapshotHash string, opts ModelKeyOpts) string

	// ArtifactKey keys a rendered file of a model.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ModelKey implements Keyer.
func (DefaultKeyer) ModelKey(snapshotHash string, opts ModelKeyOpts) string {
	return hashKey(KeyTypeModel, snapshotHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, modelHash, opts)
}

// =============================================================================
// JSON helpers
// =============================================================================

// GetJSON decodes the entry at key into v. It returns [ErrCacheMiss] on a
// miss; an undecodable entry is deleted and reported as a miss.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", keyType, err)
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

var (
	_ Clearer = (*FileCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
