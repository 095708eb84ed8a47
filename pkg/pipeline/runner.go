package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mutuals/pkg/cache"
	"github.com/matzehuels/mutuals/pkg/graph"
	"github.com/matzehuels/mutuals/pkg/membership"
	"github.com/matzehuels/mutuals/pkg/observability"
	"github.com/matzehuels/mutuals/pkg/selection"
	"github.com/matzehuels/mutuals/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the model cache expiry; zero means cache.ModelTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build loads a snapshot from src and builds its element model.
func (r *Runner) Build(ctx context.Context, src source.Source, opts BuildOptions) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, src.Name())
	snap, err := src.Load(ctx)
	loadTime := time.Since(loadStart)
	observability.Pipeline().OnLoadComplete(ctx, src.Name(), len(snap), loadTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded snapshot", "source", src.Name(), "groups", len(snap), "duration", loadTime)

	res, err := r.BuildSnapshot(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	res.Source = src.Name()
	res.Stats.LoadTime = loadTime
	return res, nil
}

// BuildSnapshot builds the element model for an already loaded snapshot.
// The normalized adjacency is cached by snapshot content and separator.
func (r *Runner) BuildSnapshot(ctx context.Context, snap membership.Snapshot, opts BuildOptions) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	canonical, err := snap.Canonical()
	if err != nil {
		return nil, err
	}
	res := &Result{SnapshotHash: cache.Hash(canonical)}
	res.Stats.Groups = len(snap)

	start := time.Now()
	adj, hit := r.adjacency(ctx, snap, res.SnapshotHash, opts)
	res.CacheHit = hit

	observability.Pipeline().OnBuildStart(ctx, adj.Len())
	res.Model = graph.Build(adj, opts.Layout)
	res.Stats.BuildTime = time.Since(start)
	res.Stats.Persons = adj.Len()
	res.Stats.Nodes = res.Model.NodeCount()
	res.Stats.Edges = res.Model.EdgeCount()
	observability.Pipeline().OnBuildComplete(ctx, res.Stats.Nodes, res.Stats.Edges, res.Stats.BuildTime, nil)

	res.ModelHash = modelHash(adj, opts)

	r.Logger.Info("built model",
		"persons", res.Stats.Persons,
		"servers", adj.GroupCount(),
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"cached", hit,
		"duration", res.Stats.BuildTime)

	return res, nil
}

// adjacency returns the cached adjacency for the snapshot or builds and
// stores it. Cache failures are logged and never fatal.
func (r *Runner) adjacency(ctx context.Context, snap membership.Snapshot, snapHash string, opts BuildOptions) (*membership.Adjacency, bool) {
	key := r.Keyer.ModelKey(snapHash, opts.ModelKeyOpts())

	if !opts.Refresh {
		var adj membership.Adjacency
		err := cache.GetJSON(ctx, r.Cache, cache.KeyTypeModel, key, &adj)
		if err == nil {
			return &adj, true
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
	}

	adj := membership.Build(snap, membership.WithSeparator(opts.separator()))
	if err := cache.SetJSON(ctx, r.Cache, cache.KeyTypeModel, key, adj, r.modelTTL()); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
	return adj, false
}

func (r *Runner) modelTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.ModelTTL
}

func modelHash(adj *membership.Adjacency, opts BuildOptions) string {
	data, _ := json.Marshal(struct {
		Adjacency *membership.Adjacency `json:"adjacency"`
		Layout    any                   `json:"layout"`
	}{adj, opts.Layout})
	return cache.Hash(data)
}

// Render draws the model with the given selection in every requested format.
// Artifacts are cached by model hash, format and selected node.
func (r *Runner) Render(ctx context.Context, res *Result, state selection.State, opts RenderOptions) (map[string][]byte, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	out := selection.Compute(res.Model, state)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(res.ModelHash, opts.ArtifactKeyOpts(format, out.State.Selected))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)

		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, format)
		data, err := renderFormat(ctx, res.Model, out, format, opts)
		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
		}
		r.Logger.Debug("rendered", "format", format, "bytes", len(data), "duration", time.Since(start))
	}
	return artifacts, nil
}
