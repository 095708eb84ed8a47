// Package observability provides hooks for metrics and logging.
//
// Libraries emit events through the registered hooks; the defaults do nothing.
// The binary installs real implementations at startup (see package prom):
//
//	func main() {
//	    observability.SetSelectionHooks(metrics)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, persons)
//	// ... build the model ...
//	observability.Pipeline().OnBuildComplete(ctx, nodes, edges, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load/build/render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, groups int, duration time.Duration, err error)

	// Build events
	OnBuildStart(ctx context.Context, persons int)
	OnBuildComplete(ctx context.Context, nodes, edges int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Selection Hooks
// =============================================================================

// SelectionHooks receives events from the selection engine.
type SelectionHooks interface {
	// OnSelect records a tap that selected a node of the given kind.
	OnSelect(ctx context.Context, kind string, highlighted, dimmed int, duration time.Duration)

	// OnDeselect records an explicit clear.
	OnDeselect(ctx context.Context)

	// OnRejected records a tap whose id is not in the model.
	OnRejected(ctx context.Context, id string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the view server.
type HTTPHooks interface {
	// OnResponse records a served request. Route is the matched pattern.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnStream records a live connection opening (+1) or closing (-1).
	OnStream(ctx context.Context, delta int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)    {}

// NoopSelectionHooks is a no-op implementation of SelectionHooks.
type NoopSelectionHooks struct{}

func (NoopSelectionHooks) OnSelect(context.Context, string, int, int, time.Duration) {}
func (NoopSelectionHooks) OnDeselect(context.Context)                                {}
func (NoopSelectionHooks) OnRejected(context.Context, string, error)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnStream(context.Context, int)                                  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks  PipelineHooks  = NoopPipelineHooks{}
	selectionHooks SelectionHooks = NoopSelectionHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetSelectionHooks registers custom selection hooks.
func SetSelectionHooks(h SelectionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		selectionHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Selection returns the registered selection hooks.
func Selection() SelectionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return selectionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	selectionHooks = NoopSelectionHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
