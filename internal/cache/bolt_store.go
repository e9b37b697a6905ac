package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"streamfinder/internal/catalog"
	"streamfinder/internal/config"
)

var (
	bucketDiscover = []byte(NamespaceDiscover)
	bucketItems    = []byte(NamespaceItems)
)

// BoltStore keeps each namespace in its own bbolt bucket. Item values are the
// JSON encoding of Item, links included.
type BoltStore struct {
	db   *bolt.DB
	path string
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens or creates the bbolt database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("bolt cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDiscover, bucketItems} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &BoltStore{db: db, path: path}, nil
}

func (s *BoltStore) DiscoveryIDs(_ context.Context, key string) ([]int64, bool, error) {
	var (
		ids   []int64
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDiscover).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &ids)
	})
	if err != nil {
		return nil, false, fmt.Errorf("read discovery ids: %w", err)
	}
	return ids, found, nil
}

func (s *BoltStore) PutDiscoveryIDs(_ context.Context, key string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode discovery ids: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDiscover).Put([]byte(key), data)
	})
}

func (s *BoltStore) Item(_ context.Context, movieID int64) (Item, bool, error) {
	var (
		item  Item
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketItems).Get([]byte(itemKey(movieID)))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &item)
	})
	if err != nil {
		return Item{}, false, fmt.Errorf("read item: %w", err)
	}
	item.StreamingLinks = emptyLinks(item.StreamingLinks)
	return item, found, nil
}

func (s *BoltStore) PutItem(_ context.Context, movieID int64, details catalog.MovieDetails) error {
	data, err := json.Marshal(Item{Details: details, StreamingLinks: map[string]string{}})
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketItems).Put([]byte(itemKey(movieID)), data)
	})
}

func (s *BoltStore) StreamingLink(ctx context.Context, movieID int64, service string) (string, bool, error) {
	item, found, err := s.Item(ctx, movieID)
	if err != nil || !found {
		return "", false, err
	}
	link, ok := item.StreamingLinks[service]
	return link, ok, nil
}

func (s *BoltStore) SetStreamingLink(_ context.Context, movieID int64, service, link string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketItems)
		key := []byte(itemKey(movieID))
		v := bucket.Get(key)
		if v == nil {
			return fmt.Errorf("set streaming link for %d: %w", movieID, ErrItemNotCached)
		}
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			return fmt.Errorf("decode item: %w", err)
		}
		item.StreamingLinks = emptyLinks(item.StreamingLinks)
		item.StreamingLinks[service] = link
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode item: %w", err)
		}
		return bucket.Put(key, data)
	})
}

func (s *BoltStore) Stats(_ context.Context) (Stats, error) {
	stats := Stats{Backend: config.CacheBackendBolt, Location: s.path}
	err := s.db.View(func(tx *bolt.Tx) error {
		stats.DiscoveryKeys = tx.Bucket(bucketDiscover).Stats().KeyN
		return tx.Bucket(bucketItems).ForEach(func(_, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			stats.Items++
			stats.StreamingLinks += len(item.StreamingLinks)
			return nil
		})
	})
	if err != nil {
		return Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}

func (s *BoltStore) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDiscover, bucketItems} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
