package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateAvailability(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLookup(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" && c.TMDB.AccessToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/streamfinder/config.toml"
		}
		return fmt.Errorf("tmdb.api_key or tmdb.access_token is required. Set TMDB_API_KEY/TMDB_ACCESS_TOKEN or edit %s (create with 'streamfinder config init')", defaultPath)
	}
	if c.TMDB.TimeoutSeconds < 0 {
		return errors.New("tmdb.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateAvailability() error {
	if c.Availability.TimeoutSeconds < 0 {
		return errors.New("availability.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendJSON, CacheBackendSQLite, CacheBackendBolt:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path must be set for the %s backend", c.Cache.Backend)
		}
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url must be set when cache.backend is redis")
		}
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want json, sqlite, bolt or redis)", c.Cache.Backend)
	}
	return nil
}

func (c *Config) validateLookup() error {
	if c.Lookup.ListTTLSeconds < 0 {
		return errors.New("lookup.list_ttl_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if c.Discovery.MaxPages < 1 || c.Discovery.MaxPages > 500 {
		return errors.New("discovery.max_pages must be between 1 and 500")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
