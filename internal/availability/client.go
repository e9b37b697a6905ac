package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamfinder/internal/services"
)

const component = "availability"

// StreamingOption is one offer for a title in one country.
type StreamingOption struct {
	Service       string `json:"service"`
	StreamingType string `json:"streamingType"`
	Link          string `json:"link"`
	Quality       string `json:"quality,omitempty"`
	Leaving       int64  `json:"leaving,omitempty"`
}

// Result is the "result" object of a /get response.
type Result struct {
	Type          string                       `json:"type"`
	Title         string                       `json:"title"`
	TMDBID        string                       `json:"tmdbId"`
	IMDbID        string                       `json:"imdbId"`
	StreamingInfo map[string][]StreamingOption `json:"streamingInfo"`
}

// Link returns the first deep link offered by the provider code in the given
// country.
func (r Result) Link(country, code string) (string, bool) {
	country = strings.ToLower(strings.TrimSpace(country))
	for _, option := range r.StreamingInfo[country] {
		if option.Service == code && option.Link != "" {
			return option.Link, true
		}
	}
	return "", false
}

// API defines the availability lookup used by the streaming resolver.
type API interface {
	Lookup(ctx context.Context, movieID int64) (*Result, error)
}

// Observer receives the outcome of every HTTP round trip.
type Observer interface {
	ObserveUpstream(api, endpoint string, err error, latency time.Duration)
}

// Client talks to the streaming-availability API.
type Client struct {
	apiKey         string
	baseURL        string
	host           string
	outputLanguage string
	httpClient     *http.Client
	observer       Observer
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

// WithOutputLanguage overrides the output_language parameter (default en).
func WithOutputLanguage(language string) Option {
	return func(c *Client) {
		if language = strings.TrimSpace(language); language != "" {
			c.outputLanguage = language
		}
	}
}

// WithObserver reports request outcomes, typically to metrics.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// New creates an availability client. host is sent as X-RapidAPI-Host.
func New(apiKey, baseURL, host string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "availability api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "availability base url required", nil)
	}
	client := &Client{
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		host:           strings.TrimSpace(host),
		outputLanguage: "en",
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup fetches streaming availability for a TMDB movie.
func (c *Client) Lookup(ctx context.Context, movieID int64) (*Result, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, component, "lookup", "movie id must be positive", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/get")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "lookup", "parse availability url", err)
	}
	params := url.Values{}
	params.Set("output_language", c.outputLanguage)
	params.Set("tmdb_id", fmt.Sprintf("movie/%d", movieID))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, component, "lookup", "build request", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	if c.host != "" {
		req.Header.Set("X-RapidAPI-Host", c.host)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		err = services.Wrap(services.UpstreamMarker(err), component, "lookup", fmt.Sprintf("execute request (latency=%v)", latency), err)
		c.observe(err, latency)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := services.Wrap(services.ErrUpstream, component, "lookup", fmt.Sprintf("availability returned %d (latency=%v)", resp.StatusCode, latency), nil)
		c.observe(err, latency)
		return nil, err
	}

	var payload struct {
		Result Result `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		err = services.Wrap(services.ErrUpstream, component, "lookup", "decode availability response", err)
		c.observe(err, latency)
		return nil, err
	}
	c.observe(nil, latency)
	return &payload.Result, nil
}

func (c *Client) observe(err error, latency time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(component, "get", err, latency)
	}
}
