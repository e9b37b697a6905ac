package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"streamfinder/internal/services"
)

const component = "tmdb"

// API defines the TMDB operations used by lookup and discovery.
type API interface {
	WatchProviders(ctx context.Context) ([]Provider, error)
	Genres(ctx context.Context) ([]Genre, error)
	Languages(ctx context.Context) ([]Language, error)
	Discover(ctx context.Context, params DiscoverParams) (*DiscoverResponse, error)
	MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error)
	MovieCredits(ctx context.Context, movieID int64) (*Credits, error)
}

// Observer receives the outcome of every HTTP round trip.
type Observer interface {
	ObserveUpstream(api, endpoint string, err error, latency time.Duration)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey      string
	accessToken string
	baseURL     string
	language    string
	region      string
	httpClient  *http.Client
	observer    Observer
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithAccessToken authenticates with a v4 read access token sent as a bearer
// header.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = strings.TrimSpace(token)
	}
}

// WithLanguage overrides the language parameter (default en-US).
func WithLanguage(language string) Option {
	return func(c *Client) {
		if language = strings.TrimSpace(language); language != "" {
			c.language = language
		}
	}
}

// WithRegion overrides the watch region (default US).
func WithRegion(region string) Option {
	return func(c *Client) {
		if region = strings.TrimSpace(region); region != "" {
			c.region = strings.ToUpper(region)
		}
	}
}

// WithObserver reports request outcomes, typically to metrics.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// New creates a TMDB client. apiKey may be empty when WithAccessToken is
// supplied.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "tmdb base url required", nil)
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   "en-US",
		region:     "US",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.apiKey == "" && client.accessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "tmdb api key or access token required", nil)
	}
	return client, nil
}

// WatchProviders lists the movie watch providers for the configured region.
func (c *Client) WatchProviders(ctx context.Context) ([]Provider, error) {
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("watch_region", c.region)

	var payload struct {
		Results []Provider `json:"results"`
	}
	if err := c.getJSON(ctx, "watch_providers", "/watch/providers/movie", params, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Genres lists the movie genres.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	params := url.Values{}
	params.Set("language", baseLanguage(c.language))

	var payload struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.getJSON(ctx, "genres", "/genre/movie/list", params, &payload); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

// Languages lists the languages TMDB knows about.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var payload []Language
	if err := c.getJSON(ctx, "languages", "/configuration/languages", url.Values{}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Discover runs a filtered /discover/movie query for one page.
func (c *Client) Discover(ctx context.Context, p DiscoverParams) (*DiscoverResponse, error) {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("language", c.language)
	params.Set("watch_region", c.region)
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}
	if p.GenreID > 0 {
		params.Set("with_genres", strconv.FormatInt(p.GenreID, 10))
	}
	if p.Language != "" {
		params.Set("with_original_language", p.Language)
	}
	params.Set("with_runtime.gte", strconv.Itoa(p.MinRuntime))
	if p.MaxRuntime > 0 {
		params.Set("with_runtime.lte", strconv.Itoa(p.MaxRuntime))
	}
	if p.ProviderID > 0 {
		params.Set("with_watch_providers", strconv.FormatInt(p.ProviderID, 10))
	}

	var payload DiscoverResponse
	if err := c.getJSON(ctx, "discover", "/discover/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieDetails fetches movie details by TMDB ID.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, component, "movie_details", "movie id must be positive", nil)
	}
	params := url.Values{}
	params.Set("language", c.language)

	var payload MovieDetails
	if err := c.getJSON(ctx, "movie_details", fmt.Sprintf("/movie/%d", movieID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieCredits fetches the cast and crew for a movie.
func (c *Client) MovieCredits(ctx context.Context, movieID int64) (*Credits, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, component, "movie_credits", "movie id must be positive", nil)
	}
	params := url.Values{}
	params.Set("language", c.language)

	var payload Credits
	if err := c.getJSON(ctx, "movie_credits", fmt.Sprintf("/movie/%d/credits", movieID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, dst any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, component, operation, "parse tmdb url", err)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, component, operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		err = services.Wrap(services.UpstreamMarker(err), component, operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
		c.observe(operation, err, latency)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrUpstream
		if resp.StatusCode == http.StatusNotFound {
			marker = services.ErrNotFound
		}
		err := services.Wrap(marker, component, operation, fmt.Sprintf("tmdb returned %d (latency=%v)", resp.StatusCode, latency), nil)
		c.observe(operation, err, latency)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		err = services.Wrap(services.ErrUpstream, component, operation, "decode tmdb response", err)
		c.observe(operation, err, latency)
		return err
	}
	c.observe(operation, nil, latency)
	return nil
}

func (c *Client) observe(operation string, err error, latency time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(component, operation, err, latency)
	}
}

func baseLanguage(tag string) string {
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		return tag[:idx]
	}
	return tag
}

// PosterURL joins an image base URL and a poster path, returning an empty
// string when the movie has no poster.
func PosterURL(imageBaseURL, posterPath string) string {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" {
		return ""
	}
	return strings.TrimRight(imageBaseURL, "/") + "/" + strings.TrimLeft(posterPath, "/")
}
