package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/mutuals/pkg/observability"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OnDeselect(context.Background())
	m.OnStream(context.Background(), 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"mutuals_selection_events_total", "mutuals_http_open_streams"} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestNewNilRegistry(t *testing.T) {
	m := New(nil)
	m.OnCacheHit(context.Background(), "model")
	if got := testutil.ToFloat64(m.CacheOps.WithLabelValues("model", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestPipelineMetrics(t *testing.T) {
	ctx := context.Background()
	m := New(prometheus.NewRegistry())

	m.OnBuildComplete(ctx, 14, 20, time.Millisecond, nil)
	m.OnRenderComplete(ctx, "svg", time.Millisecond, nil)
	m.OnRenderComplete(ctx, "png", time.Millisecond, errors.New("rsvg-convert missing"))

	if got := testutil.ToFloat64(m.ModelSize.WithLabelValues("nodes")); got != 14 {
		t.Errorf("model nodes = %v, want 14", got)
	}
	if got := testutil.ToFloat64(m.ModelSize.WithLabelValues("edges")); got != 20 {
		t.Errorf("model edges = %v, want 20", got)
	}
	if got := testutil.ToFloat64(m.Renders.WithLabelValues("svg", "ok")); got != 1 {
		t.Errorf("svg ok renders = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Renders.WithLabelValues("png", "error")); got != 1 {
		t.Errorf("png error renders = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.StageDuration); got != 2 {
		t.Errorf("stage series = %d, want 2", got)
	}
}

func TestSelectionMetrics(t *testing.T) {
	ctx := context.Background()
	m := New(prometheus.NewRegistry())

	m.OnSelect(ctx, "server", 3, 5, time.Microsecond)
	m.OnSelect(ctx, "server", 2, 6, time.Microsecond)
	m.OnSelect(ctx, "me", 4, 4, time.Microsecond)
	m.OnRejected(ctx, "ghost", errors.New("not found"))

	if got := testutil.ToFloat64(m.Selections.WithLabelValues("server")); got != 2 {
		t.Errorf("server selections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SelectionRejected); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
}

func TestCacheAndHTTPMetrics(t *testing.T) {
	ctx := context.Background()
	m := New(prometheus.NewRegistry())

	m.OnCacheMiss(ctx, "artifact")
	m.OnCacheSet(ctx, "artifact", 512)
	m.OnCacheSet(ctx, "artifact", 512)
	m.OnResponse(ctx, "POST", "/api/views/{id}/tap", 404, time.Millisecond)
	m.OnStream(ctx, 1)
	m.OnStream(ctx, 1)
	m.OnStream(ctx, -1)

	if got := testutil.ToFloat64(m.CacheBytes.WithLabelValues("artifact")); got != 1024 {
		t.Errorf("cache bytes = %v, want 1024", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/api/views/{id}/tap", "404")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Streams); got != 1 {
		t.Errorf("open streams = %v, want 1", got)
	}
}

func TestInstall(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	m := New(nil)
	m.Install()

	if observability.Pipeline() != observability.PipelineHooks(m) {
		t.Error("Install should set pipeline hooks")
	}
	if observability.HTTP() != observability.HTTPHooks(m) {
		t.Error("Install should set HTTP hooks")
	}
}
