// Package tmdb is a client for the enrichment metadata API. One
// request per film fetches the movie record plus credits, keywords,
// release dates, external ids, watch providers and videos.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/ratelimit"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

const appendFields = "credits,keywords,release_dates,external_ids,watch/providers,videos"

// Client talks to the enrichment API with bearer auth and a shared
// rate limiter. A client with an empty API key is unconfigured and
// must not be used; callers check IsConfigured first.
type Client struct {
	baseURL    string
	apiKey     string
	country    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient wires an HTTP client and rate limiter. country selects
// which region's certification is promoted onto the record.
func NewClient(apiKey string, httpClient *http.Client, minDelay time.Duration, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		country:    "US",
		httpClient: httpClient,
		limiter:    ratelimit.New(minDelay),
		logger:     logger.Named("tmdb-client"),
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// FetchMovie fetches a movie with all appended sub-resources and
// parses it into a MovieRecord. Returns (nil, nil) when the id does
// not exist on the source.
func (c *Client) FetchMovie(ctx context.Context, tmdbID int64) (*MovieRecord, error) {
	c.logger.Info("Fetching movie", zap.Int64("tmdb_id", tmdbID))

	endpoint := fmt.Sprintf("%s/movie/%d?append_to_response=%s&language=en-US", c.baseURL, tmdbID, appendFields)

	var resp movieResponse
	found, err := c.doGET(ctx, endpoint, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch movie %d: %w", tmdbID, err)
	}
	if !found {
		c.logger.Warn("Movie not found on source", zap.Int64("tmdb_id", tmdbID))
		return nil, nil
	}

	return parseMovieResponse(&resp, c.country), nil
}

// TestConnection verifies the API key by fetching the configuration
// endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	var resp map[string]interface{}
	found, err := c.doGET(ctx, c.baseURL+"/configuration", &resp)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("configuration endpoint not found")
	}
	return nil
}

// doGET performs a rate-limited GET and decodes the JSON body into v.
// Returns found=false on a 404 without error; any other non-2xx
// status is an error.
func (c *Client) doGET(ctx context.Context, endpoint string, v interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("api returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
