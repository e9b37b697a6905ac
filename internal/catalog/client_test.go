package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamfinder/internal/catalog"
	"streamfinder/internal/services"
)

func newClient(t *testing.T, handler http.HandlerFunc, opts ...catalog.Option) *catalog.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := catalog.New("key", server.URL, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := catalog.New("", "https://example.com")
	if err == nil {
		t.Fatal("expected error when api key and token missing")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := catalog.New("", "https://example.com", catalog.WithAccessToken("tok")); err != nil {
		t.Fatalf("token-only client should be valid: %v", err)
	}
}

func TestWatchProvidersSendsRegionAndKey(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch/providers/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key" || q.Get("watch_region") != "US" || q.Get("language") != "en-US" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[{"provider_id":8,"provider_name":"Netflix"},{"provider_id":9,"provider_name":"Amazon Prime Video"}]}`))
	})

	providers, err := client.WatchProviders(context.Background())
	if err != nil {
		t.Fatalf("WatchProviders returned error: %v", err)
	}
	if len(providers) != 2 || providers[0].ID != 8 || providers[0].Name != "Netflix" {
		t.Fatalf("unexpected providers: %#v", providers)
	}
}

func TestBearerTokenHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if r.URL.Query().Has("api_key") {
			t.Errorf("api_key should be omitted for token-only client")
		}
		if r.URL.Query().Get("language") != "en" {
			t.Errorf("genre list should use base language, got %q", r.URL.Query().Get("language"))
		}
		_, _ = w.Write([]byte(`{"genres":[{"id":35,"name":"Comedy"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := catalog.New("", server.URL, catalog.WithAccessToken("tok"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres returned error: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Comedy" {
		t.Fatalf("unexpected genres: %#v", genres)
	}
}

func TestLanguagesDecodesArray(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"iso_639_1":"fr","english_name":"French","name":"Français"}]`))
	})
	langs, err := client.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages returned error: %v", err)
	}
	if len(langs) != 1 || langs[0].Code != "fr" || langs[0].EnglishName != "French" {
		t.Fatalf("unexpected languages: %#v", langs)
	}
}

func TestDiscoverQueryParameters(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"include_adult":          "false",
			"include_video":          "false",
			"language":               "en-US",
			"watch_region":           "US",
			"with_genres":            "35",
			"with_original_language": "en",
			"with_runtime.gte":       "90",
			"with_runtime.lte":       "120",
			"with_watch_providers":   "8",
		}
		for key, value := range want {
			if got := q.Get(key); got != value {
				t.Errorf("%s = %q, want %q", key, got, value)
			}
		}
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[{"id":11},{"id":12}]}`))
	})

	resp, err := client.Discover(context.Background(), catalog.DiscoverParams{
		ProviderID: 8, GenreID: 35, Language: "en", MinRuntime: 90, MaxRuntime: 120,
	})
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	ids := resp.IDs()
	if len(ids) != 2 || ids[0] != 11 || ids[1] != 12 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestMovieDetailsAndCredits(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/42":
			_, _ = w.Write([]byte(`{"id":42,"title":"Example","runtime":95,"poster_path":"/p.jpg","release_date":"2001-02-03","genres":[{"id":35,"name":"Comedy"}]}`))
		case "/movie/42/credits":
			_, _ = w.Write([]byte(`{"id":42,"crew":[{"name":"A","job":"Writer"},{"name":"B","job":"Director"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	details, err := client.MovieDetails(context.Background(), 42)
	if err != nil {
		t.Fatalf("MovieDetails returned error: %v", err)
	}
	if details.Title != "Example" || details.Runtime != 95 || details.Year() != "2001" || details.GenreNames() != "Comedy" {
		t.Fatalf("unexpected details: %#v", details)
	}

	credits, err := client.MovieCredits(context.Background(), 42)
	if err != nil {
		t.Fatalf("MovieCredits returned error: %v", err)
	}
	if got := credits.Directors(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("unexpected directors: %v", got)
	}
}

func TestMovieDetailsRejectsNonPositiveID(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := client.MovieDetails(context.Background(), 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHTTPErrorsAreClassified(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.MovieDetails(context.Background(), 404); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.Genres(context.Background()); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestDecodeFailureIsUpstream(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	if _, err := client.Languages(context.Background()); !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestTimeoutIsClassified(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}, catalog.WithTimeout(20*time.Millisecond))

	if _, err := client.Languages(context.Background()); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveUpstream(api, endpoint string, err error, _ time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.calls = append(r.calls, api+"/"+endpoint+"/"+outcome)
}

func TestObserverReceivesOutcome(t *testing.T) {
	observer := &recordingObserver{}
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"genres":[]}`))
	}, catalog.WithObserver(observer))

	if _, err := client.Genres(context.Background()); err != nil {
		t.Fatalf("Genres returned error: %v", err)
	}
	if len(observer.calls) != 1 || observer.calls[0] != "tmdb/genres/ok" {
		t.Fatalf("unexpected observations: %v", observer.calls)
	}
}

func TestPosterURL(t *testing.T) {
	if got := catalog.PosterURL("https://image.tmdb.org/t/p/original/", "/abc.jpg"); got != "https://image.tmdb.org/t/p/original/abc.jpg" {
		t.Fatalf("PosterURL = %q", got)
	}
	if got := catalog.PosterURL("https://image.tmdb.org/t/p/original", ""); got != "" {
		t.Fatalf("empty poster path should yield empty url, got %q", got)
	}
}
