package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "snapshot.json")
	p.OnLoadComplete(ctx, "snapshot.json", 3, time.Second, nil)
	p.OnBuildStart(ctx, 10)
	p.OnBuildComplete(ctx, 14, 20, time.Second, nil)
	p.OnRenderStart(ctx, "svg")
	p.OnRenderComplete(ctx, "svg", time.Second, nil)

	// Selection hooks
	s := NoopSelectionHooks{}
	s.OnSelect(ctx, "server", 3, 10, time.Millisecond)
	s.OnDeselect(ctx)
	s.OnRejected(ctx, "ghost", errors.New("not found"))

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "model")
	c.OnCacheMiss(ctx, "model")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "POST", "/api/views/{id}/tap", 200, time.Millisecond)
	h.OnStream(ctx, 1)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Selection().(NoopSelectionHooks); !ok {
		t.Error("Selection() should return NoopSelectionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customSelection := &testSelectionHooks{}
	SetSelectionHooks(customSelection)
	if Selection() != customSelection {
		t.Error("SetSelectionHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Selection().(NoopSelectionHooks); !ok {
		t.Error("Reset() should restore NoopSelectionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testSelectionHooks{}
	SetSelectionHooks(custom)
	SetSelectionHooks(nil)

	if Selection() != custom {
		t.Error("SetSelectionHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testSelectionHooks struct{ NoopSelectionHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
