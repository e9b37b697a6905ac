package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"streamfinder/internal/catalog"
	"streamfinder/internal/config"
	"streamfinder/internal/fileutil"
	"streamfinder/internal/logging"
)

const lockRetryDelay = 20 * time.Millisecond

// JSONStore keeps the whole cache in one JSON document. The file is re-read
// on every operation and rewritten atomically after every mutation. An
// in-process mutex plus an advisory file lock serialize read-modify-write
// cycles across goroutines and processes.
type JSONStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	lock   *flock.Flock
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore creates a JSON-file store at path. The file is created lazily on
// the first write.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &JSONStore{
		path:   path,
		logger: logging.NewComponentLogger(logger, "cache"),
		lock:   flock.New(path + ".lock"),
	}
}

// Path returns the document location.
func (s *JSONStore) Path() string {
	return s.path
}

// ReadDocument returns the parsed document, or an empty one when the file is
// absent, empty, unreadable, or corrupt. Only lock acquisition can fail.
func (s *JSONStore) ReadDocument(ctx context.Context) (*Document, error) {
	var doc *Document
	err := s.view(ctx, func(d *Document) error {
		doc = d
		return nil
	})
	return doc, err
}

// WriteDocument replaces the file with doc.
func (s *JSONStore) WriteDocument(ctx context.Context, doc *Document) error {
	return s.update(ctx, func(d *Document) error {
		if doc == nil {
			*d = *NewDocument()
			return nil
		}
		*d = *doc
		return nil
	})
}

func (s *JSONStore) DiscoveryIDs(ctx context.Context, key string) ([]int64, bool, error) {
	var (
		ids   []int64
		found bool
	)
	err := s.view(ctx, func(d *Document) error {
		ids, found = d.Discover[key]
		return nil
	})
	return ids, found, err
}

func (s *JSONStore) PutDiscoveryIDs(ctx context.Context, key string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	return s.update(ctx, func(d *Document) error {
		d.Discover[key] = ids
		return nil
	})
}

func (s *JSONStore) Item(ctx context.Context, movieID int64) (Item, bool, error) {
	var (
		item  Item
		found bool
	)
	err := s.view(ctx, func(d *Document) error {
		item, found = d.Items[itemKey(movieID)]
		item.StreamingLinks = emptyLinks(item.StreamingLinks)
		return nil
	})
	return item, found, err
}

func (s *JSONStore) PutItem(ctx context.Context, movieID int64, details catalog.MovieDetails) error {
	return s.update(ctx, func(d *Document) error {
		d.Items[itemKey(movieID)] = Item{Details: details, StreamingLinks: map[string]string{}}
		return nil
	})
}

func (s *JSONStore) StreamingLink(ctx context.Context, movieID int64, service string) (string, bool, error) {
	var (
		link  string
		found bool
	)
	err := s.view(ctx, func(d *Document) error {
		item, ok := d.Items[itemKey(movieID)]
		if !ok {
			return nil
		}
		link, found = item.StreamingLinks[service]
		return nil
	})
	return link, found, err
}

func (s *JSONStore) SetStreamingLink(ctx context.Context, movieID int64, service, link string) error {
	return s.update(ctx, func(d *Document) error {
		key := itemKey(movieID)
		item, ok := d.Items[key]
		if !ok {
			return fmt.Errorf("set streaming link for %d: %w", movieID, ErrItemNotCached)
		}
		item.StreamingLinks = emptyLinks(item.StreamingLinks)
		item.StreamingLinks[service] = link
		d.Items[key] = item
		return nil
	})
}

func (s *JSONStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: config.CacheBackendJSON, Location: s.path}
	err := s.view(ctx, func(d *Document) error {
		stats.DiscoveryKeys, stats.Items, stats.StreamingLinks = d.stats()
		return nil
	})
	return stats, err
}

func (s *JSONStore) Clear(ctx context.Context) error {
	return s.update(ctx, func(d *Document) error {
		*d = *NewDocument()
		return nil
	})
}

func (s *JSONStore) Close() error {
	return s.lock.Close()
}

func (s *JSONStore) view(ctx context.Context, fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}
	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache read lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire cache read lock: %s busy", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn(s.load())
}

func (s *JSONStore) update(ctx context.Context, fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return err
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache write lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire cache write lock: %s busy", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()

	doc := s.load()
	if err := fn(doc); err != nil {
		return err
	}
	doc.ensure()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

func (s *JSONStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	return nil
}

// load never fails: unreadable or corrupt content degrades to an empty
// document with a warning.
func (s *JSONStore) load() *Document {
	data, err := fileutil.ReadFileIfExists(s.path)
	if err != nil {
		logging.WarnWithContext(s.logger, "cache file unreadable", "cache_read_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions"),
			logging.String(logging.FieldImpact, "cache starts empty; results are re-fetched"))
		return NewDocument()
	}
	if len(data) == 0 {
		return NewDocument()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.WarnWithContext(s.logger, "cache file corrupt", "cache_parse_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file or run 'streamfinder cache clear'"),
			logging.String(logging.FieldImpact, "cache starts empty; results are re-fetched"))
		return NewDocument()
	}
	doc.ensure()
	return &doc
}
