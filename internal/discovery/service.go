package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"streamfinder/internal/availability"
	"streamfinder/internal/cache"
	"streamfinder/internal/catalog"
	"streamfinder/internal/logging"
	"streamfinder/internal/lookup"
	"streamfinder/internal/services"
)

// LinkUnavailable is cached and returned when the availability API has no
// offer for the requested service.
const LinkUnavailable = "Streaming link not available."

// UnknownDirector stands in when the credits list no director.
const UnknownDirector = "Unknown"

// Translator resolves filter names to catalog identifiers.
type Translator interface {
	ProviderID(ctx context.Context, name string) (int64, error)
	GenreID(ctx context.Context, name string) (int64, error)
	LanguageCode(ctx context.Context, name string) (string, error)
}

// Observer receives cache hit/miss notifications.
type Observer interface {
	CacheLookup(namespace string, hit bool)
}

// Request holds the user's filter selections by display name.
type Request struct {
	Service  string `json:"service"`
	Genre    string `json:"genre"`
	Language string `json:"language"`
	Band     Band   `json:"duration"`
}

// Validate checks that every selection is present.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(r.Genre) == "" {
		missing = append(missing, "genre")
	}
	if strings.TrimSpace(r.Language) == "" {
		missing = append(missing, "language")
	}
	if r.Band.Label == "" {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrValidation, "discovery", "search", "missing "+strings.Join(missing, ", "), nil)
	}
	if r.Band.Max < r.Band.Min {
		return services.Wrap(services.ErrValidation, "discovery", "search", "duration range is inverted", nil)
	}
	return nil
}

// Movie is one search result.
type Movie struct {
	ID        int64    `json:"tmdb_id"`
	Title     string   `json:"title"`
	Year      string   `json:"year,omitempty"`
	Directors []string `json:"directors"`
	Runtime   int      `json:"runtime"`
	Genre     string   `json:"genre"`
	Genres    string   `json:"catalog_genres,omitempty"`
	Language  string   `json:"language"`
	Service   string   `json:"service"`
	PosterURL string   `json:"poster_url,omitempty"`
	Overview  string   `json:"overview"`
}

// DirectorList joins director names for display.
func (m Movie) DirectorList() string {
	return strings.Join(m.Directors, ", ")
}

// GenreLabel shows the selected genre followed by the catalog's own genre
// names, e.g. "Comedy (Comedy, Romance)".
func (m Movie) GenreLabel() string {
	if m.Genres == "" || m.Genres == m.Genre {
		return m.Genre
	}
	return m.Genre + " (" + m.Genres + ")"
}

// Service runs searches and resolves streaming links.
type Service struct {
	catalog      catalog.API
	availability availability.API
	store        cache.Store
	translator   Translator
	logger       *slog.Logger
	observer     Observer
	imageBaseURL string
	country      string
	maxPages     int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports cache hits and misses.
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithImageBaseURL sets the prefix used to build poster URLs.
func WithImageBaseURL(base string) Option {
	return func(s *Service) {
		if base = strings.TrimSpace(base); base != "" {
			s.imageBaseURL = base
		}
	}
}

// WithCountry selects the availability country (default us).
func WithCountry(country string) Option {
	return func(s *Service) {
		if country = strings.TrimSpace(country); country != "" {
			s.country = strings.ToLower(country)
		}
	}
}

// WithMaxPages walks up to n discovery pages on a cache miss (default 1).
func WithMaxPages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithTranslator overrides the default lookup translator.
func WithTranslator(t Translator) Option {
	return func(s *Service) {
		if t != nil {
			s.translator = t
		}
	}
}

// New builds a Service. avail may be nil, in which case StreamingLink serves
// only cached links and reports a configuration error on a miss.
func New(api catalog.API, avail availability.API, store cache.Store, opts ...Option) *Service {
	s := &Service{
		catalog:      api,
		availability: avail,
		store:        store,
		logger:       logging.NewNop(),
		imageBaseURL: "https://image.tmdb.org/t/p/original",
		country:      "us",
		maxPages:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.translator == nil {
		s.translator = lookup.New(api, lookup.WithLogger(s.logger))
	}
	s.logger = logging.NewComponentLogger(s.logger, "discovery")
	return s
}

// Search runs the discovery flow for req. Any remote failure aborts the whole
// search; no partial results are returned.
func (s *Service) Search(ctx context.Context, req Request) ([]Movie, error) {
	ctx = services.WithOperation(ctx, "search")
	logger := logging.WithContext(ctx, s.logger)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	providerID, err := s.translator.ProviderID(ctx, req.Service)
	if err != nil {
		return nil, fmt.Errorf("translate service: %w", err)
	}
	genreID, err := s.translator.GenreID(ctx, req.Genre)
	if err != nil {
		return nil, fmt.Errorf("translate genre: %w", err)
	}
	languageCode, err := s.translator.LanguageCode(ctx, req.Language)
	if err != nil {
		return nil, fmt.Errorf("translate language: %w", err)
	}

	params := catalog.DiscoverParams{
		ProviderID: providerID,
		GenreID:    genreID,
		Language:   languageCode,
		MinRuntime: req.Band.Min,
		MaxRuntime: req.Band.Max,
	}
	ids, err := s.discoverIDs(ctx, params)
	if err != nil {
		return nil, err
	}

	movies := make([]Movie, 0, len(ids))
	for _, id := range ids {
		details, err := s.Details(ctx, id)
		if err != nil {
			return nil, err
		}
		if !req.Band.Contains(details.Runtime) {
			logger.Debug("dropped by runtime refilter",
				logging.Int64(logging.FieldMovieID, id),
				logging.Int("runtime", details.Runtime))
			continue
		}
		directors, err := s.Directors(ctx, id)
		if err != nil {
			return nil, err
		}
		movies = append(movies, Movie{
			ID:        id,
			Title:     details.Title,
			Year:      details.Year(),
			Directors: directors,
			Runtime:   details.Runtime,
			Genre:     req.Genre,
			Genres:    details.GenreNames(),
			Language:  req.Language,
			Service:   req.Service,
			PosterURL: catalog.PosterURL(s.imageBaseURL, details.PosterPath),
			Overview:  details.Overview,
		})
	}

	logger.Info("search complete",
		logging.String(logging.FieldEventType, "search_complete"),
		logging.String(logging.FieldService, req.Service),
		logging.String("genre", req.Genre),
		logging.String("language", req.Language),
		logging.String("duration", req.Band.Name),
		logging.Int("candidates", len(ids)),
		logging.Int("results", len(movies)),
		logging.Duration("elapsed", time.Since(start)))
	return movies, nil
}

// discoverIDs returns the cached ID list for the filter key, or fetches and
// caches it. A present key, even with an empty list, is a hit.
func (s *Service) discoverIDs(ctx context.Context, params catalog.DiscoverParams) ([]int64, error) {
	key := cache.FilterKey(params.ProviderID, params.GenreID, params.Language, params.MinRuntime, params.MaxRuntime)
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldCacheKey, key))

	ids, found, err := s.store.DiscoveryIDs(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read discovery cache: %w", err)
	}
	s.observe(cache.NamespaceDiscover, found)
	if found {
		logger.Debug("discovery cache hit", logging.Int("count", len(ids)))
		return ids, nil
	}

	ids = []int64{}
	for page := 1; page <= s.maxPages; page++ {
		params.Page = page
		resp, err := s.catalog.Discover(ctx, params)
		if err != nil {
			return nil, err
		}
		ids = append(ids, resp.IDs()...)
		if page >= resp.TotalPages {
			break
		}
	}
	if err := s.store.PutDiscoveryIDs(ctx, key, ids); err != nil {
		return nil, fmt.Errorf("write discovery cache: %w", err)
	}
	logger.Debug("discovery cache miss", logging.Int("count", len(ids)))
	return ids, nil
}

// Details returns movie details from the item cache, fetching and caching
// them when the entry is absent or empty. Caching replaces the entry, which
// resets its streaming links.
func (s *Service) Details(ctx context.Context, movieID int64) (catalog.MovieDetails, error) {
	item, found, err := s.store.Item(ctx, movieID)
	if err != nil {
		return catalog.MovieDetails{}, fmt.Errorf("read item cache: %w", err)
	}
	hit := found && !item.Details.IsZero()
	s.observe(cache.NamespaceItems, hit)
	if hit {
		return item.Details, nil
	}

	details, err := s.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return catalog.MovieDetails{}, err
	}
	if err := s.store.PutItem(ctx, movieID, *details); err != nil {
		return catalog.MovieDetails{}, fmt.Errorf("write item cache: %w", err)
	}
	return *details, nil
}

// Directors returns the director names for a movie, or ["Unknown"] when the
// credits name none. Credits are never cached.
func (s *Service) Directors(ctx context.Context, movieID int64) ([]string, error) {
	credits, err := s.catalog.MovieCredits(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return DirectorNames(credits.Crew), nil
}

// DirectorNames extracts crew members with job "Director", substituting
// ["Unknown"] when there are none.
func DirectorNames(crew []catalog.CrewMember) []string {
	names := catalog.Credits{Crew: crew}.Directors()
	if len(names) == 0 {
		return []string{UnknownDirector}
	}
	return names
}

// StreamingLink resolves the deep link for a movie on the named service. The
// result is either a URL or LinkUnavailable; both are cached and terminal.
func (s *Service) StreamingLink(ctx context.Context, movieID int64, serviceName string) (string, error) {
	ctx = services.WithOperation(ctx, "streaming_link")
	logger := logging.WithContext(ctx, s.logger).With(
		logging.Int64(logging.FieldMovieID, movieID),
		logging.String(logging.FieldService, serviceName))

	if movieID <= 0 {
		return "", services.Wrap(services.ErrValidation, "discovery", "streaming_link", "movie id must be positive", nil)
	}
	code, ok := availability.ServiceCode(serviceName)
	if !ok {
		return "", &lookup.NotFoundError{
			Kind:        lookup.KindService,
			Value:       serviceName,
			Suggestions: lookup.Suggest(serviceName, availability.ServiceNames()),
		}
	}

	if _, found, err := s.store.Item(ctx, movieID); err != nil {
		return "", fmt.Errorf("read item cache: %w", err)
	} else if !found {
		logger.Debug("materializing item before link lookup")
		if _, err := s.Details(ctx, movieID); err != nil {
			return "", err
		}
	}

	link, found, err := s.store.StreamingLink(ctx, movieID, serviceName)
	if err != nil {
		return "", fmt.Errorf("read link cache: %w", err)
	}
	s.observe("links", found)
	if found {
		logger.Debug("streaming link cache hit")
		return link, nil
	}

	if s.availability == nil {
		return "", services.Wrap(services.ErrConfiguration, "discovery", "streaming_link", "availability api key not configured", nil)
	}
	result, err := s.availability.Lookup(ctx, movieID)
	if err != nil {
		return "", err
	}
	link, ok = result.Link(s.country, code)
	if !ok {
		link = LinkUnavailable
	}
	if err := s.store.SetStreamingLink(ctx, movieID, serviceName, link); err != nil {
		if errors.Is(err, cache.ErrItemNotCached) {
			logging.WarnWithContext(logger, "item vanished before link write", "link_cache_race",
				logging.Error(err),
				logging.String(logging.FieldImpact, "link returned but not cached"))
			return link, nil
		}
		return "", fmt.Errorf("write link cache: %w", err)
	}
	logger.Info("streaming link resolved",
		logging.String(logging.FieldEventType, "link_resolved"),
		logging.Bool("available", link != LinkUnavailable))
	return link, nil
}

// IsAvailable reports whether link is a real URL rather than the sentinel.
func IsAvailable(link string) bool {
	return link != "" && link != LinkUnavailable
}

func (s *Service) observe(namespace string, hit bool) {
	if s.observer != nil {
		s.observer.CacheLookup(namespace, hit)
	}
}
