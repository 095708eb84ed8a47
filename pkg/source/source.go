// Package source loads membership snapshots.
//
// A snapshot comes from a JSON file ([File]), a JSON document served over
// HTTP ([HTTP]) or a MongoDB collection ([Mongo]). [Open] picks the backend
// from a location string: mongodb:// and mongodb+srv:// URIs select Mongo,
// http:// and https:// URLs select HTTP, anything else is a path.
package source

import (
	"context"
	"strings"

	"github.com/matzehuels/mutuals/pkg/membership"
)

// Source loads one membership snapshot.
type Source interface {
	// Load reads the snapshot. Member metadata is decoded leniently; only the
	// group and member levels are required to be well formed.
	Load(ctx context.Context) (membership.Snapshot, error)

	// Name describes the source for logs and cache keys.
	Name() string
}

// Options configures [Open].
type Options struct {
	Database   string // Mongo database
	Collection string // Mongo collection
}

// Default Mongo names.
const (
	DefaultDatabase   = "mutuals"
	DefaultCollection = "groups"
)

// IsMongoURI reports whether loc is a MongoDB connection string.
func IsMongoURI(loc string) bool {
	return strings.HasPrefix(loc, "mongodb://") || strings.HasPrefix(loc, "mongodb+srv://")
}

// Open returns the source for loc.
func Open(loc string, opts Options) Source {
	if IsMongoURI(loc) {
		return NewMongo(loc, opts.Database, opts.Collection)
	}
	if IsHTTPURL(loc) {
		return NewHTTP(loc, nil)
	}
	return NewFile(loc)
}
