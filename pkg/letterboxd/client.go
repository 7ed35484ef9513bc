// Package letterboxd scrapes account, diary, watchlist and film pages
// from the primary film-diary source, rate limited to stay polite.
package letterboxd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/ratelimit"
)

const defaultBaseURL = "https://letterboxd.com"

const userAgent = "cinelog-engine/1.0"

// Client fetches pages from the primary source. All fetches pass
// through a shared rate limiter so that concurrent callers cannot
// exceed the configured request spacing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient wires an HTTP client and rate limiter. A nil httpClient
// gets a 30 second timeout default.
func NewClient(httpClient *http.Client, minDelay time.Duration, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		limiter:    ratelimit.New(minDelay),
		logger:     logger.Named("letterboxd-client"),
	}
}

// FetchAccount scrapes an account's profile page.
func (c *Client) FetchAccount(ctx context.Context, username string) (*AccountRecord, error) {
	c.logger.Info("Fetching account profile", zap.String("username", username))

	doc, err := c.fetchDocument(ctx, fmt.Sprintf("%s/%s/", c.baseURL, username))
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %s: %w", username, err)
	}

	record := parseProfile(doc)
	record.Username = username
	return record, nil
}

// FetchDiary scrapes all pages of an account's diary in the order the
// source lists them. A non-zero year restricts the diary to that year.
func (c *Client) FetchDiary(ctx context.Context, username string, year int) ([]DiaryEntryRecord, error) {
	c.logger.Info("Fetching diary", zap.String("username", username), zap.Int("year", year))

	base := fmt.Sprintf("%s/%s/films/diary", c.baseURL, username)
	if year > 0 {
		base = fmt.Sprintf("%s/for/%d", base, year)
	}

	var entries []DiaryEntryRecord
	for page := 1; ; page++ {
		doc, err := c.fetchDocument(ctx, fmt.Sprintf("%s/page/%d/", base, page))
		if err != nil {
			return nil, fmt.Errorf("fetch diary page %d for %s: %w", page, username, err)
		}

		pageEntries := parseDiaryPage(doc)
		entries = append(entries, pageEntries...)

		if !hasNextPage(doc) {
			break
		}
	}

	c.logger.Info("Diary fetched", zap.String("username", username), zap.Int("entries", len(entries)))
	return entries, nil
}

// FetchWatchedFilms scrapes all pages of an account's watched-films
// grid, including the account's own ratings.
func (c *Client) FetchWatchedFilms(ctx context.Context, username string) ([]WatchedFilmRecord, error) {
	c.logger.Info("Fetching watched films", zap.String("username", username))

	var films []WatchedFilmRecord
	for page := 1; ; page++ {
		doc, err := c.fetchDocument(ctx, fmt.Sprintf("%s/%s/films/page/%d/", c.baseURL, username, page))
		if err != nil {
			return nil, fmt.Errorf("fetch films page %d for %s: %w", page, username, err)
		}

		films = append(films, parseFilmsPage(doc)...)

		if !hasNextPage(doc) {
			break
		}
	}

	return films, nil
}

// FetchWatchlist scrapes all pages of an account's watchlist.
func (c *Client) FetchWatchlist(ctx context.Context, username string) ([]FilmRef, error) {
	c.logger.Info("Fetching watchlist", zap.String("username", username))

	var refs []FilmRef
	for page := 1; ; page++ {
		doc, err := c.fetchDocument(ctx, fmt.Sprintf("%s/%s/watchlist/page/%d/", c.baseURL, username, page))
		if err != nil {
			return nil, fmt.Errorf("fetch watchlist page %d for %s: %w", page, username, err)
		}

		refs = append(refs, parseWatchlistPage(doc)...)

		if !hasNextPage(doc) {
			break
		}
	}

	return refs, nil
}

// FetchFilmDetail scrapes a film's own page.
func (c *Client) FetchFilmDetail(ctx context.Context, slug string) (*FilmDetailRecord, error) {
	c.logger.Info("Fetching film details", zap.String("slug", slug))

	doc, err := c.fetchDocument(ctx, fmt.Sprintf("%s/film/%s/", c.baseURL, slug))
	if err != nil {
		return nil, fmt.Errorf("fetch film %s: %w", slug, err)
	}

	record := parseFilmDetail(doc)
	record.Slug = slug
	return record, nil
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
