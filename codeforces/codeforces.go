// Package codeforces fetches a user's submission activity and rating
// history from the Codeforces REST API.
package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/codetrail/codetrail/activity"
	"github.com/codetrail/codetrail/datekey"
	"github.com/codetrail/codetrail/fetch"
)

// Platform is the tag this adapter stamps on its series.
const Platform = activity.Codeforces

const defaultBaseURL = "https://codeforces.com"

// maxSubmissions caps how many recent submissions one fetch requests.
// The API pages by record count, not by date, so older activity of very
// prolific users falls outside the window. That truncation is a
// documented approximation of this adapter, not an error.
const maxSubmissions = 1000

// Client handles Codeforces requests.
type Client struct {
	httpClient *http.Client
	cache      fetch.Cacher
	logger     *slog.Logger
	baseURL    string
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache   fetch.Cacher
	logger  *slog.Logger
	baseURL string
}

// WithHTTPCache sets the response cache.
func WithHTTPCache(cache fetch.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = baseURL }
}

// New creates a Codeforces client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default(), baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		httpClient: fetch.NewClient(),
		cache:      cfg.cache,
		logger:     cfg.logger,
		baseURL:    cfg.baseURL,
	}, nil
}

type apiResponse struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type submission struct {
	CreationTimeSeconds int64 `json:"creationTimeSeconds"`
}

type ratingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	NewRating               int    `json:"newRating"`
}

// FetchSeries buckets the user's most recent submissions by UTC day.
// Only the latest maxSubmissions records are considered, so the oldest
// days of very active users may be under-counted.
func (c *Client) FetchSeries(ctx context.Context, handle string) ([]activity.DayCount, error) {
	c.logger.InfoContext(ctx, "fetching codeforces submissions", "handle", handle)

	endpoint := fmt.Sprintf("%s/api/user.status?handle=%s&from=1&count=%d",
		c.baseURL, url.QueryEscape(handle), maxSubmissions)

	result, err := c.call(ctx, endpoint, handle)
	if err != nil {
		return nil, err
	}

	var submissions []submission
	if err := json.Unmarshal(result, &submissions); err != nil {
		return nil, fmt.Errorf("codeforces user.status result: %w", activity.ErrParseFailure)
	}

	counts := make(map[datekey.Key]int)
	for _, s := range submissions {
		day, err := datekey.FromUnixSeconds(s.CreationTimeSeconds)
		if err != nil {
			return nil, fmt.Errorf("codeforces timestamp %d: %w", s.CreationTimeSeconds, activity.ErrParseFailure)
		}
		counts[day]++
	}

	series := make([]activity.DayCount, 0, len(counts))
	for day, count := range counts {
		series = append(series, activity.DayCount{Day: day, Count: count})
	}
	return series, nil
}

// FetchRatingHistory returns the user's contest rating changes in
// upstream chronological order.
func (c *Client) FetchRatingHistory(ctx context.Context, handle string) ([]activity.ContestRecord, error) {
	c.logger.InfoContext(ctx, "fetching codeforces rating history", "handle", handle)

	endpoint := fmt.Sprintf("%s/api/user.rating?handle=%s", c.baseURL, url.QueryEscape(handle))

	result, err := c.call(ctx, endpoint, handle)
	if err != nil {
		return nil, err
	}

	var changes []ratingChange
	if err := json.Unmarshal(result, &changes); err != nil {
		return nil, fmt.Errorf("codeforces user.rating result: %w", activity.ErrParseFailure)
	}

	records := make([]activity.ContestRecord, 0, len(changes))
	for _, ch := range changes {
		day, err := datekey.FromUnixSeconds(ch.RatingUpdateTimeSeconds)
		if err != nil {
			return nil, fmt.Errorf("codeforces rating timestamp %d: %w", ch.RatingUpdateTimeSeconds, activity.ErrParseFailure)
		}
		records = append(records, activity.ContestRecord{
			Code:   fmt.Sprintf("%d", ch.ContestID),
			Name:   ch.ContestName,
			Rating: ch.NewRating,
			Rank:   ch.Rank,
			Date:   day,
		})
	}
	return records, nil
}

func (c *Client) call(ctx context.Context, endpoint, handle string) (json.RawMessage, error) {
	body, err := fetch.Get(ctx, c.cache, c.httpClient, endpoint, c.logger)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("codeforces response: %w", activity.ErrParseFailure)
	}

	if resp.Status != "OK" {
		if strings.Contains(resp.Comment, "not found") {
			return nil, fmt.Errorf("codeforces handle %q: %w", handle, activity.ErrNotFound)
		}
		return nil, fmt.Errorf("codeforces status %q (%s): %w", resp.Status, resp.Comment, activity.ErrUnavailable)
	}
	return resp.Result, nil
}
