package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"streamfinder/internal/catalog"
)

func TestReadDocumentAbsentOrEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := NewJSONStore(filepath.Join(dir, "missing.json"), nil)
	doc, err := store.ReadDocument(ctx)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if len(doc.Discover) != 0 || len(doc.Items) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}

	emptyPath := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err = NewJSONStore(emptyPath, nil).ReadDocument(ctx)
	if err != nil || len(doc.Discover) != 0 || len(doc.Items) != 0 {
		t.Fatalf("empty file: doc=%#v err=%v", doc, err)
	}
}

func TestReadDocumentCorruptDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewJSONStore(path, nil)
	doc, err := store.ReadDocument(context.Background())
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if len(doc.Discover) != 0 || len(doc.Items) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}

	// The next write replaces the corrupt content.
	if err := store.PutDiscoveryIDs(context.Background(), "k", []int64{1}); err != nil {
		t.Fatalf("PutDiscoveryIDs: %v", err)
	}
	if _, found, _ := store.DiscoveryIDs(context.Background(), "k"); !found {
		t.Fatal("write after corrupt read should persist")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nested", "cache.json"), nil)
	ctx := context.Background()
	want := &Document{
		Discover: map[string][]int64{
			"8_35_en_90_120": {11, 12},
			"8_18_fr_0_89":   {},
		},
		Items: map[string]Item{
			"11": {
				Details:        catalog.MovieDetails{ID: 11, Title: "A", Runtime: 100, Genres: []catalog.Genre{{ID: 35, Name: "Comedy"}}},
				StreamingLinks: map[string]string{"Netflix": "https://n/11", "Hulu": "Streaming link not available."},
			},
			"12": {
				Details:        catalog.MovieDetails{ID: 12, Title: "B", Runtime: 95},
				StreamingLinks: map[string]string{},
			},
		},
	}
	if err := store.WriteDocument(ctx, want); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	got, err := store.ReadDocument(ctx)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestPersistedShapeHasTwoNamespaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewJSONStore(path, nil)
	ctx := context.Background()
	if err := store.PutDiscoveryIDs(ctx, "8_35_en_0_89", []int64{7}); err != nil {
		t.Fatal(err)
	}
	if err := store.PutItem(ctx, 7, catalog.MovieDetails{ID: 7, Title: "Seven"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"discover"`, `"items"`, `"8_35_en_0_89"`, `"movie_details"`, `"streaming_link"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s in persisted document:\n%s", want, data)
		}
	}
}

func TestConcurrentSetStreamingLinkLosesNoUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()
	if err := NewJSONStore(path, nil).PutItem(ctx, 1, catalog.MovieDetails{ID: 1}); err != nil {
		t.Fatal(err)
	}

	// Two store instances on one file exercise the file lock as well as the
	// in-process mutex.
	stores := []*JSONStore{NewJSONStore(path, nil), NewJSONStore(path, nil)}
	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := stores[i%len(stores)]
			errs <- store.SetStreamingLink(ctx, 1, fmt.Sprintf("svc-%02d", i), fmt.Sprintf("https://x/%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("SetStreamingLink: %v", err)
		}
	}

	item, found, err := stores[0].Item(ctx, 1)
	if err != nil || !found {
		t.Fatalf("Item: found=%v err=%v", found, err)
	}
	if len(item.StreamingLinks) != writers {
		t.Fatalf("lost updates: %d links, want %d", len(item.StreamingLinks), writers)
	}
}
