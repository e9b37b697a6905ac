package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"streamfinder/internal/catalog"
	"streamfinder/internal/config"
)

// RedisStore keeps discovery lists and item details as JSON strings and the
// streaming links of each item in a hash:
//
//	{prefix}discover:{key}  -> JSON []int64
//	{prefix}item:{id}       -> JSON catalog.MovieDetails
//	{prefix}links:{id}      -> hash service -> link
type RedisStore struct {
	client *redis.Client
	prefix string
	url    string
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to redisURL and verifies the connection.
func OpenRedis(redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client, prefix, opts.Addr), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix, location string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, url: location}
}

func (s *RedisStore) discoverKey(key string) string { return s.prefix + "discover:" + key }

func (s *RedisStore) itemKey(movieID int64) string { return s.prefix + "item:" + itemKey(movieID) }

func (s *RedisStore) linksKey(movieID int64) string { return s.prefix + "links:" + itemKey(movieID) }

func (s *RedisStore) DiscoveryIDs(ctx context.Context, key string) ([]int64, bool, error) {
	data, err := s.client.Get(ctx, s.discoverKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal discovery ids: %w", err)
	}
	return ids, true, nil
}

func (s *RedisStore) PutDiscoveryIDs(ctx context.Context, key string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal discovery ids: %w", err)
	}
	if err := s.client.Set(ctx, s.discoverKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Item(ctx context.Context, movieID int64) (Item, bool, error) {
	item := Item{StreamingLinks: map[string]string{}}
	data, err := s.client.Get(ctx, s.itemKey(movieID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return item, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("failed to get from redis: %w", err)
	}
	if err := json.Unmarshal(data, &item.Details); err != nil {
		return Item{}, false, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	links, err := s.client.HGetAll(ctx, s.linksKey(movieID)).Result()
	if err != nil {
		return Item{}, false, fmt.Errorf("failed to get links from redis: %w", err)
	}
	for service, link := range links {
		item.StreamingLinks[service] = link
	}
	return item, true, nil
}

func (s *RedisStore) PutItem(ctx context.Context, movieID int64, details catalog.MovieDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.itemKey(movieID), data, 0)
		pipe.Del(ctx, s.linksKey(movieID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set item in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) StreamingLink(ctx context.Context, movieID int64, service string) (string, bool, error) {
	link, err := s.client.HGet(ctx, s.linksKey(movieID), service).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get link from redis: %w", err)
	}
	return link, true, nil
}

func (s *RedisStore) SetStreamingLink(ctx context.Context, movieID int64, service, link string) error {
	key := s.itemKey(movieID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("set streaming link for %d: %w", movieID, ErrItemNotCached)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.linksKey(movieID), service, link)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, ErrItemNotCached) {
			return err
		}
		return fmt.Errorf("failed to set link in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: config.CacheBackendRedis, Location: s.url}
	var err error
	if stats.DiscoveryKeys, err = s.countKeys(ctx, s.prefix+"discover:*"); err != nil {
		return Stats{}, err
	}
	if stats.Items, err = s.countKeys(ctx, s.prefix+"item:*"); err != nil {
		return Stats{}, err
	}
	iter := s.client.Scan(ctx, 0, s.prefix+"links:*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.client.HLen(ctx, iter.Val()).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("failed to count links: %w", err)
		}
		stats.StreamingLinks += int(n)
	}
	if err := iter.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to scan redis: %w", err)
	}
	return stats, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) countKeys(ctx context.Context, pattern string) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan redis: %w", err)
	}
	return count, nil
}
