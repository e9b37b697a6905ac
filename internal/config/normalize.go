package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeAvailability()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeWeb()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	if c.TMDB.AccessToken == "" {
		if value, ok := os.LookupEnv("TMDB_ACCESS_TOKEN"); ok {
			c.TMDB.AccessToken = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.AccessToken = strings.TrimSpace(c.TMDB.AccessToken)
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	c.TMDB.Region = strings.ToUpper(strings.TrimSpace(c.TMDB.Region))
	if c.TMDB.Region == "" {
		c.TMDB.Region = defaultTMDBRegion
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	if c.TMDB.TimeoutSeconds == 0 {
		c.TMDB.TimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeAvailability() {
	if c.Availability.APIKey == "" {
		if value, ok := os.LookupEnv("STREAMING_AVAILABILITY_KEY"); ok {
			c.Availability.APIKey = value
		}
	}
	c.Availability.APIKey = strings.TrimSpace(c.Availability.APIKey)
	c.Availability.BaseURL = strings.TrimSpace(c.Availability.BaseURL)
	if c.Availability.BaseURL == "" {
		c.Availability.BaseURL = defaultAvailabilityBaseURL
	}
	c.Availability.Host = strings.TrimSpace(c.Availability.Host)
	if c.Availability.Host == "" {
		c.Availability.Host = defaultAvailabilityHost
	}
	c.Availability.OutputLanguage = strings.TrimSpace(c.Availability.OutputLanguage)
	if c.Availability.OutputLanguage == "" {
		c.Availability.OutputLanguage = defaultAvailabilityOutputLang
	}
	c.Availability.Country = strings.ToLower(strings.TrimSpace(c.Availability.Country))
	if c.Availability.Country == "" {
		c.Availability.Country = defaultAvailabilityCountry
	}
	if c.Availability.TimeoutSeconds == 0 {
		c.Availability.TimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if c.Cache.RedisURL == "" {
		if value, ok := os.LookupEnv("STREAMFINDER_REDIS_URL"); ok {
			c.Cache.RedisURL = value
		}
	}
	c.Cache.RedisURL = strings.TrimSpace(c.Cache.RedisURL)
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = defaultRedisPrefix
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCacheFile(c.Paths.CacheDir, c.Cache.Backend)
	}
	var err error
	if c.Cache.Path, err = expandPath(strings.TrimSpace(c.Cache.Path)); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeWeb() {
	c.Web.Bind = strings.TrimSpace(c.Web.Bind)
	if c.Web.Bind == "" {
		c.Web.Bind = defaultWebBind
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
