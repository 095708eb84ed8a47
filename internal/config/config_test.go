package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/mutuals/pkg/errors"
	"github.com/matzehuels/mutuals/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, undecoded, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
	if len(undecoded) != 0 {
		t.Errorf("undecoded = %v, want none", undecoded)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[layout]
min_spacing = 50

[membership]
separator = "@"

[server]
addr = ":9000"
watch = true

[cache]
backend = "redis"
ttl = "2h"
redis_addr = "cache:6379"
redis_db = 3

[source]
collection = "servers"
`)
	cfg, undecoded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(undecoded) != 0 {
		t.Errorf("undecoded = %v", undecoded)
	}
	if cfg.Layout.MinSpacing != 50 {
		t.Errorf("MinSpacing = %v, want 50", cfg.Layout.MinSpacing)
	}
	if cfg.Membership.Separator != "@" {
		t.Errorf("Separator = %q, want @", cfg.Membership.Separator)
	}
	if cfg.Server.Addr != ":9000" || !cfg.Server.Watch {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL.Duration != 2*time.Hour || cfg.Cache.RedisDB != 3 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	// unset keys keep defaults
	if cfg.Cache.RedisPrefix != "mutuals:" {
		t.Errorf("RedisPrefix = %q, want default", cfg.Cache.RedisPrefix)
	}
	if cfg.Source.Database != "mutuals" || cfg.Source.Collection != "servers" {
		t.Errorf("Source = %+v", cfg.Source)
	}
}

func TestLoadReportsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"
port = 9000
`)
	_, undecoded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(undecoded, []string{"server.port"}) {
		t.Errorf("undecoded = %v, want [server.port]", undecoded)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[server`},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"bad separator", "[membership]\nseparator = \"ab\""},
		{"negative layout", "[layout]\nmin_spacing = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLayoutOptions(t *testing.T) {
	got := Layout{SpreadHeight: 400}.Options()
	want := layout.DefaultOptions()
	want.SpreadHeight = 400
	if got != want {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/tmp/xdg", "mutuals", "config.toml") {
		t.Errorf("DefaultPath() = %q", path)
	}
}
