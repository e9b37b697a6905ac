package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"streamfinder/internal/catalog"
	"streamfinder/internal/config"
	"streamfinder/internal/services"
)

// Namespace names used in logs and metrics.
const (
	NamespaceDiscover = "discover"
	NamespaceItems    = "items"
)

// ErrItemNotCached indicates a streaming link write for a movie whose item
// entry has not been created.
var ErrItemNotCached = fmt.Errorf("%w: movie not cached", services.ErrNotFound)

// Item is the cached state for one movie.
type Item struct {
	Details        catalog.MovieDetails `json:"movie_details"`
	StreamingLinks map[string]string    `json:"streaming_link"`
}

// Stats summarizes store contents.
type Stats struct {
	Backend        string `json:"backend"`
	Location       string `json:"location"`
	DiscoveryKeys  int    `json:"discovery_keys"`
	Items          int    `json:"items"`
	StreamingLinks int    `json:"streaming_links"`
}

// Store is the persistence contract shared by every backend.
type Store interface {
	// DiscoveryIDs returns the cached IDs for a filter key. found is true for
	// a present key even when the list is empty.
	DiscoveryIDs(ctx context.Context, key string) (ids []int64, found bool, err error)
	PutDiscoveryIDs(ctx context.Context, key string, ids []int64) error

	Item(ctx context.Context, movieID int64) (Item, bool, error)
	// PutItem creates or replaces the item entry. The streaming-link map is
	// reset to empty.
	PutItem(ctx context.Context, movieID int64, details catalog.MovieDetails) error

	StreamingLink(ctx context.Context, movieID int64, service string) (string, bool, error)
	// SetStreamingLink fails with ErrItemNotCached when the item entry is
	// absent.
	SetStreamingLink(ctx context.Context, movieID int64, service, link string) error

	Stats(ctx context.Context) (Stats, error)
	Clear(ctx context.Context) error
	Close() error
}

// Open constructs the backend selected by cfg.Cache.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "cache", "open", "config required", nil)
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendJSON, "":
		return NewJSONStore(cfg.Cache.Path, logger), nil
	case config.CacheBackendSQLite:
		return OpenSQLite(cfg.Cache.Path)
	case config.CacheBackendBolt:
		return OpenBolt(cfg.Cache.Path)
	case config.CacheBackendRedis:
		return OpenRedis(cfg.Cache.RedisURL, cfg.Cache.RedisPrefix)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "cache", "open", fmt.Sprintf("unsupported backend %q", cfg.Cache.Backend), nil)
	}
}

func itemKey(movieID int64) string {
	return strconv.FormatInt(movieID, 10)
}

func emptyLinks(links map[string]string) map[string]string {
	if links == nil {
		return map[string]string{}
	}
	return links
}
