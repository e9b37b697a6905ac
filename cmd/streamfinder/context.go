package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"streamfinder/internal/availability"
	"streamfinder/internal/cache"
	"streamfinder/internal/catalog"
	"streamfinder/internal/config"
	"streamfinder/internal/discovery"
	"streamfinder/internal/logging"
	"streamfinder/internal/lookup"
	"streamfinder/internal/metrics"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

// app holds the wired dependencies shared by search, link and serve.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	store     cache.Store
	discovery *discovery.Service
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// ensureApp wires the logger, API clients, cache store and discovery service
// once per invocation.
func (c *commandContext) ensureApp() (*app, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = buildApp(cfg)
	})
	return c.app, c.appErr
}

// withApp runs fn against the wired dependencies and closes the cache store
// afterwards.
func (c *commandContext) withApp(fn func(*app) error) error {
	a, err := c.ensureApp()
	if err != nil {
		return err
	}
	defer func() {
		if a.store != nil {
			_ = a.store.Close()
			a.store = nil
		}
	}()
	return fn(a)
}

func buildApp(cfg *config.Config) (*app, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	m := metrics.New()

	catalogOpts := []catalog.Option{
		catalog.WithAccessToken(cfg.TMDB.AccessToken),
		catalog.WithLanguage(cfg.TMDB.Language),
		catalog.WithRegion(cfg.TMDB.Region),
		catalog.WithTimeout(seconds(cfg.TMDB.TimeoutSeconds)),
		catalog.WithObserver(m),
	}
	catalogClient, err := catalog.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, catalogOpts...)
	if err != nil {
		return nil, err
	}

	// A nil availability client leaves link resolution to cached entries.
	var availClient availability.API
	if cfg.HasAvailabilityKey() {
		client, err := availability.New(cfg.Availability.APIKey, cfg.Availability.BaseURL, cfg.Availability.Host,
			availability.WithOutputLanguage(cfg.Availability.OutputLanguage),
			availability.WithTimeout(seconds(cfg.Availability.TimeoutSeconds)),
			availability.WithObserver(m),
		)
		if err != nil {
			return nil, err
		}
		availClient = client
	} else {
		logging.WarnWithContext(logger, "streaming availability key not configured", "availability_disabled",
			logging.String(logging.FieldErrorHint, "set availability.api_key or STREAMING_AVAILABILITY_KEY"),
			logging.String(logging.FieldImpact, "only cached streaming links can be returned"))
	}

	store, err := cache.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	translator := lookup.New(catalogClient,
		lookup.WithListTTL(seconds(cfg.Lookup.ListTTLSeconds)),
		lookup.WithLogger(logger),
		lookup.WithObserver(m),
	)
	svc := discovery.New(catalogClient, availClient, store,
		discovery.WithLogger(logger),
		discovery.WithObserver(m),
		discovery.WithTranslator(translator),
		discovery.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		discovery.WithCountry(cfg.Availability.Country),
		discovery.WithMaxPages(cfg.Discovery.MaxPages),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		store:     store,
		discovery: svc,
	}, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
