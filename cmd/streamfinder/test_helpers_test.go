package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

type cliTestEnv struct {
	configPath string
	cachePath  string
	baseDir    string

	discoverCalls     atomic.Int64
	detailsCalls      atomic.Int64
	availabilityCalls atomic.Int64
}

// setupCLITestEnv starts fake catalog and availability APIs and writes a config
// file pointing at them. Movie 1 is 100 minutes and streams on Netflix; movie 2
// is 80 minutes and has no streaming options.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{baseDir: base}
	tmdb := httptest.NewServer(env.catalogHandler(t))
	t.Cleanup(tmdb.Close)
	avail := httptest.NewServer(env.availabilityHandler(t))
	t.Cleanup(avail.Close)

	env.cachePath = filepath.Join(base, "cache", "cache.json")
	env.configPath = filepath.Join(homeDir, ".config", "streamfinder", "config.toml")
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[paths]
cache_dir = %q
log_dir = %q

[tmdb]
api_key = "test-key"
base_url = %q
image_base_url = "https://img.test/t/p/original"

[availability]
api_key = "rapid-key"
base_url = %q
host = "streaming-availability.test"

[cache]
backend = "json"
path = %q

[logging]
level = "error"
`, filepath.Join(base, "cache"), filepath.Join(base, "logs"), tmdb.URL, avail.URL, env.cachePath)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) catalogHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch/providers/movie", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, map[string]any{"results": []map[string]any{
			{"provider_id": 8, "provider_name": "Netflix"},
			{"provider_id": 15, "provider_name": "Hulu"},
		}})
	})
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, map[string]any{"genres": []map[string]any{
			{"id": 35, "name": "Comedy"},
			{"id": 18, "name": "Drama"},
		}})
	})
	mux.HandleFunc("/configuration/languages", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, []map[string]any{
			{"iso_639_1": "en", "english_name": "English", "name": "English"},
			{"iso_639_1": "fr", "english_name": "French", "name": "Français"},
		})
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		e.discoverCalls.Add(1)
		writeTestJSON(t, w, map[string]any{
			"page":        1,
			"total_pages": 1,
			"results":     []map[string]any{{"id": 1, "title": "Alpha Movie"}, {"id": 2, "title": "Beta Movie"}},
		})
	})
	mux.HandleFunc("/movie/1", func(w http.ResponseWriter, r *http.Request) {
		e.detailsCalls.Add(1)
		writeTestJSON(t, w, map[string]any{
			"id": 1, "title": "Alpha Movie", "runtime": 100, "release_date": "2001-05-04",
			"poster_path": "/alpha.jpg", "overview": "A comedy about alphas.",
			"genres": []map[string]any{{"id": 35, "name": "Comedy"}, {"id": 10749, "name": "Romance"}},
		})
	})
	mux.HandleFunc("/movie/2", func(w http.ResponseWriter, r *http.Request) {
		e.detailsCalls.Add(1)
		writeTestJSON(t, w, map[string]any{"id": 2, "title": "Beta Movie", "runtime": 80})
	})
	mux.HandleFunc("/movie/1/credits", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, map[string]any{"id": 1, "crew": []map[string]any{
			{"id": 10, "name": "Jane Doe", "job": "Director"},
			{"id": 11, "name": "John Roe", "job": "Writer"},
		}})
	})
	mux.HandleFunc("/movie/2/credits", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, map[string]any{"id": 2, "crew": []map[string]any{}})
	})
	return mux
}

func (e *cliTestEnv) availabilityHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.availabilityCalls.Add(1)
		if r.Header.Get("X-RapidAPI-Key") != "rapid-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		info := map[string]any{}
		if r.URL.Query().Get("tmdb_id") == "movie/1" {
			info["us"] = []map[string]any{{"service": "netflix", "streamingType": "subscription", "link": "https://www.netflix.com/title/1"}}
		}
		writeTestJSON(t, w, map[string]any{"result": map[string]any{"type": "movie", "streamingInfo": info}})
	})
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, nil)
}

func runCLIWithInput(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
