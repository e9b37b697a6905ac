package config

import "path/filepath"

// Cache backend identifiers.
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
	CacheBackendBolt   = "bolt"
	CacheBackendRedis  = "redis"
)

const (
	defaultCacheDir               = "~/.cache/streamfinder"
	defaultLogDir                 = "~/.local/share/streamfinder/logs"
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBLanguage           = "en-US"
	defaultTMDBRegion             = "US"
	defaultTMDBImageBaseURL       = "https://image.tmdb.org/t/p/original"
	defaultAvailabilityBaseURL    = "https://streaming-availability.p.rapidapi.com"
	defaultAvailabilityHost       = "streaming-availability.p.rapidapi.com"
	defaultAvailabilityOutputLang = "en"
	defaultAvailabilityCountry    = "us"
	defaultRequestTimeoutSeconds  = 10
	defaultCacheBackend           = CacheBackendJSON
	defaultRedisPrefix            = "streamfinder:"
	defaultLookupListTTLSeconds   = 600
	defaultDiscoveryMaxPages      = 1
	defaultWebBind                = "127.0.0.1:5000"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			Region:         defaultTMDBRegion,
			ImageBaseURL:   defaultTMDBImageBaseURL,
			TimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Availability: Availability{
			BaseURL:        defaultAvailabilityBaseURL,
			Host:           defaultAvailabilityHost,
			OutputLanguage: defaultAvailabilityOutputLang,
			Country:        defaultAvailabilityCountry,
			TimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Cache: Cache{
			Backend:     defaultCacheBackend,
			RedisPrefix: defaultRedisPrefix,
		},
		Lookup: Lookup{
			ListTTLSeconds: defaultLookupListTTLSeconds,
		},
		Discovery: Discovery{
			MaxPages: defaultDiscoveryMaxPages,
		},
		Web: Web{
			Bind:           defaultWebBind,
			MetricsEnabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheFile(cacheDir, backend string) string {
	switch backend {
	case CacheBackendSQLite:
		return filepath.Join(cacheDir, "cache.db")
	case CacheBackendBolt:
		return filepath.Join(cacheDir, "cache.bolt")
	default:
		return filepath.Join(cacheDir, "cache.json")
	}
}
