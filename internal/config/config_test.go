package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"streamfinder/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("STREAMING_AVAILABILITY_KEY", "rapid-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCacheDir := filepath.Join(tempHome, ".cache", "streamfinder")
	if cfg.Paths.CacheDir != wantCacheDir {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCacheDir)
	}
	if cfg.Cache.Backend != config.CacheBackendJSON {
		t.Fatalf("unexpected cache backend: %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(wantCacheDir, "cache.json") {
		t.Fatalf("unexpected cache path: %q", cfg.Cache.Path)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.Region != "US" {
		t.Fatalf("unexpected region: %q", cfg.TMDB.Region)
	}
	if !cfg.HasAvailabilityKey() {
		t.Fatal("expected availability key from env")
	}
	if cfg.Web.Bind != "127.0.0.1:5000" {
		t.Fatalf("unexpected web bind: %q", cfg.Web.Bind)
	}
	if cfg.Discovery.MaxPages != 1 {
		t.Fatalf("unexpected max pages: %d", cfg.Discovery.MaxPages)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPathOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	custom := config.Default()
	custom.TMDB.AccessToken = "bearer-token"
	custom.Cache.Backend = "SQLite"
	custom.Cache.Path = filepath.Join(dir, "movies.db")
	custom.Logging.Format = "JSON"
	custom.Discovery.MaxPages = 3

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Cache.Backend != config.CacheBackendSQLite {
		t.Fatalf("expected normalized sqlite backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Path != filepath.Join(dir, "movies.db") {
		t.Fatalf("unexpected cache path: %q", cfg.Cache.Path)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
	if cfg.Discovery.MaxPages != 3 {
		t.Fatalf("unexpected max pages: %d", cfg.Discovery.MaxPages)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error without tmdb credentials")
	}
	if !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCacheBackends(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"unknown backend", func(c *config.Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without url", func(c *config.Config) { c.Cache.Backend = config.CacheBackendRedis }, "cache.redis_url"},
		{"json without path", func(c *config.Config) { c.Cache.Path = "" }, "cache.path"},
		{"bad pages", func(c *config.Config) { c.Discovery.MaxPages = 0 }, "discovery.max_pages"},
		{"bad ttl", func(c *config.Config) { c.Lookup.ListTTLSeconds = -1 }, "lookup.list_ttl_seconds"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TMDB.APIKey = "key"
			cfg.Cache.Path = "/tmp/cache.json"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TMDB_API_KEY", "sample-key")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.TMDB.APIKey != "sample-key" {
		t.Fatalf("expected env key to fill empty sample value, got %q", cfg.TMDB.APIKey)
	}
}
