package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/mutuals/pkg/cache"
	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/membership"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoad(t *testing.T) {
	path := writeFile(t, `{"A": {"p1#123": {}, "p2#456": {"mutual_servers": ["B"]}}}`)

	s, err := NewFile(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := s["A"]["p2#456"].MutualGroups; !slices.Equal(got, []string{"B"}) {
		t.Errorf("hints = %v", got)
	}
	if len(s["A"]) != 2 {
		t.Errorf("members = %v", s["A"])
	}
}

func TestFileLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }, errors.ErrCodeFileNotFound},
		{"not json", func(t *testing.T) string { return writeFile(t, "not json") }, errors.ErrCodeInvalidFormat},
		{"array", func(t *testing.T) string { return writeFile(t, `[1, 2]`) }, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(tt.path(t)).Load(context.Background())
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFileLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFile(writeFile(t, `{}`)).Load(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestReadJSONLenientMembers(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(`{
		"A": {"x": null, "y": "junk", "z": {"mutual_servers": "B"}, "w": {"mutual_groups": ["C", 3]}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(s["A"]) != 4 {
		t.Fatalf("members = %v", s["A"])
	}
	if got := s["A"]["w"].MutualGroups; !slices.Equal(got, []string{"C"}) {
		t.Errorf("w hints = %v", got)
	}
	if got := s["A"]["z"].MutualGroups; len(got) != 0 {
		t.Errorf("z hints = %v", got)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		loc  string
		want string
	}{
		{"snapshot.json", "*source.File"},
		{"mongodb://localhost:27017", "*source.Mongo"},
		{"mongodb+srv://cluster.example.net", "*source.Mongo"},
		{"https://example.net/snapshot.json", "*source.HTTP"},
	}
	for _, tt := range tests {
		var got string
		switch Open(tt.loc, Options{}).(type) {
		case *File:
			got = "*source.File"
		case *Mongo:
			got = "*source.Mongo"
		case *HTTP:
			got = "*source.HTTP"
		}
		if got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.loc, got, tt.want)
		}
	}

	m := Open("mongodb://db", Options{Collection: "servers"}).(*Mongo)
	if m.Name() != "mongodb://db/mutuals.servers" {
		t.Errorf("Name() = %q", m.Name())
	}
}

func marshal(t *testing.T, v any) bson.Raw {
	t.Helper()
	data, err := bson.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bson.Raw(data)
}

func TestMergeGroupDocument(t *testing.T) {
	s := membership.Snapshot{}

	mergeGroupDocument(s, marshal(t, bson.D{
		{Key: "name", Value: "A"},
		{Key: "members", Value: bson.D{
			{Key: "p1#123", Value: bson.D{}},
			{Key: "p2#456", Value: bson.D{{Key: "mutual_servers", Value: bson.A{"B", 7}}}},
			{Key: "p3", Value: "junk"},
		}},
	}))
	mergeGroupDocument(s, marshal(t, bson.D{{Key: "name", Value: 42}}))
	mergeGroupDocument(s, marshal(t, bson.D{{Key: "name", Value: "Empty"}}))
	mergeGroupDocument(s, marshal(t, bson.D{
		{Key: "name", Value: "A"},
		{Key: "members", Value: bson.D{{Key: "p4", Value: nil}}},
	}))

	if len(s) != 2 {
		t.Fatalf("groups = %v", s)
	}
	if len(s["A"]) != 4 {
		t.Errorf("A members = %v", s["A"])
	}
	if got := s["A"]["p2#456"].MutualGroups; !slices.Equal(got, []string{"B"}) {
		t.Errorf("p2 hints = %v", got)
	}
	if _, ok := s["Empty"]; !ok {
		t.Error("group without members missing")
	}

	adj := membership.Build(s)
	if got := adj.Persons(); !slices.Equal(got, []string{"p1", "p2", "p3", "p4"}) {
		t.Errorf("persons = %v", got)
	}
}

func TestHTTPLoad(t *testing.T) {
	cache.RetryDelay = time.Millisecond
	t.Cleanup(func() { cache.RetryDelay = time.Second })

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky":
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"A": {"p1": {}}}`))
		case "/bad":
			w.Write([]byte(`[1, 2]`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL+"/flaky", srv.Client()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s["A"]["p1"]; !ok {
		t.Errorf("snapshot = %v", s)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}

	tests := []struct {
		path string
		code errors.Code
	}{
		{"/missing", errors.ErrCodeNotFound},
		{"/bad", errors.ErrCodeInvalidFormat},
		{"/forbidden", errors.ErrCodeSource},
	}
	for _, tt := range tests {
		_, err := NewHTTP(srv.URL+tt.path, srv.Client()).Load(context.Background())
		if !errors.Is(err, tt.code) {
			t.Errorf("%s: err = %v, want %s", tt.path, err, tt.code)
		}
	}
}
