package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// testCacheContract exercises the behavior every storing backend shares.
func testCacheContract(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "absent"); err != nil || hit {
		t.Fatalf("Get(absent) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("after overwrite Get(k) = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	testCacheContract(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned as hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v, want 3", n, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory not empty after Clear: %d entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q", c.Dir())
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var got map[string][]string
	if err := GetJSON(ctx, c, KeyTypeModel, "m", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetJSON(miss) = %v, want ErrCacheMiss", err)
	}

	want := map[string][]string{"alice": {"A", "B"}}
	if err := SetJSON(ctx, c, KeyTypeModel, "m", want, ModelTTL); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, KeyTypeModel, "m", &got); err != nil {
		t.Fatal(err)
	}
	if len(got["alice"]) != 2 || got["alice"][1] != "B" {
		t.Errorf("round trip = %v", got)
	}

	if err := c.Set(ctx, "bad", []byte(`"a string"`), 0); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, KeyTypeModel, "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("undecodable entry = %v, want ErrCacheMiss", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	mk1 := k.ModelKey("snap", ModelKeyOpts{Separator: "#"})
	mk2 := k.ModelKey("snap", ModelKeyOpts{Separator: "@"})
	if mk1 == mk2 {
		t.Error("different separators should produce different model keys")
	}
	if mk1 != k.ModelKey("snap", ModelKeyOpts{Separator: "#"}) {
		t.Error("ModelKey should be deterministic")
	}
	if mk1[:len(KeyTypeModel)+1] != KeyTypeModel+":" {
		t.Errorf("ModelKey prefix: %s", mk1)
	}

	ak1 := k.ArtifactKey("model", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("model", ArtifactKeyOpts{Format: "svg", Selected: "server:A"})
	if ak1 == ak2 {
		t.Error("selection should be part of the artifact key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	opts := ModelKeyOpts{Separator: "#"}
	if got, want := scoped.ModelKey("h", opts), "staging:"+inner.ModelKey("h", opts); got != want {
		t.Errorf("ModelKey = %s, want %s", got, want)
	}
	aopts := ArtifactKeyOpts{Format: "png"}
	if got, want := scoped.ArtifactKey("h", aopts), "staging:"+inner.ArtifactKey("h", aopts); got != want {
		t.Errorf("ArtifactKey = %s, want %s", got, want)
	}
	if NewScopedKeyer(nil, "x:").ModelKey("h", opts) != "x:"+inner.ModelKey("h", opts) {
		t.Error("nil inner keyer should fall back to the default keyer")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := RetryDelay
	RetryDelay = time.Millisecond
	defer func() { RetryDelay = old }()

	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("retryable: err %v after %d calls", err, calls)
	}

	calls = 0
	permanent := errors.New("permanent")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("permanent: err %v after %d calls", err, calls)
	}

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestNewRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
