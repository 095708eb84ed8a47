package source

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mutuals/pkg/cache"
	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/membership"
)

// Mongo reads a snapshot from a collection holding one document per group:
//
//	{"name": "<group>", "members": {"<member id>": {"mutual_servers": [...]}}}
//
// Documents without a string name are skipped. Member values follow the same
// lenient rules as the JSON format.
type Mongo struct {
	uri        string
	database   string
	collection string
	timeout    time.Duration
}

// NewMongo creates a Mongo source. Empty names fall back to the defaults.
func NewMongo(uri, database, collection string) *Mongo {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Mongo{uri: uri, database: database, collection: collection, timeout: 10 * time.Second}
}

// Name implements Source.
func (m *Mongo) Name() string { return m.uri + "/" + m.database + "." + m.collection }

// Load implements Source.
func (m *Mongo) Load(ctx context.Context) (membership.Snapshot, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(m.uri).
		SetServerSelectionTimeout(m.timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "connect %s", m.database)
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "ping %s", m.database)
	}

	cur, err := client.Database(m.database).Collection(m.collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "query %s.%s", m.database, m.collection)
	}
	defer cur.Close(ctx)

	s := membership.Snapshot{}
	for cur.Next(ctx) {
		mergeGroupDocument(s, cur.Current)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "read %s.%s", m.database, m.collection)
	}
	return s, nil
}

// mergeGroupDocument adds one group document to s. Documents sharing a name
// are merged.
func mergeGroupDocument(s membership.Snapshot, doc bson.Raw) {
	name, ok := doc.Lookup("name").StringValueOK()
	if !ok {
		return
	}
	members := s[name]
	if members == nil {
		members = map[string]membership.MemberInfo{}
		s[name] = members
	}

	raw, ok := doc.Lookup("members").DocumentOK()
	if !ok {
		return
	}
	elems, err := raw.Elements()
	if err != nil {
		return
	}
	for _, el := range elems {
		members[el.Key()] = decodeMember(el.Value())
	}
}

func decodeMember(v bson.RawValue) membership.MemberInfo {
	var info membership.MemberInfo
	doc, ok := v.DocumentOK()
	if !ok {
		return info
	}
	for _, key := range []string{membership.HintKeyServers, membership.HintKeyGroups} {
		arr, ok := doc.Lookup(key).ArrayOK()
		if !ok {
			continue
		}
		values, err := arr.Values()
		if err != nil {
			continue
		}
		for _, item := range values {
			if g, ok := item.StringValueOK(); ok {
				info.MutualGroups = append(info.MutualGroups, g)
			}
		}
	}
	return info
}

var _ Source = (*Mongo)(nil)
