// Package codechef fetches a user's submission activity and contest
// history from CodeChef, which has no public API. The per-day series
// comes from a heatmap endpoint; the contest history is embedded in the
// profile page's inline script and recovered with scriptdata.
//
// Because both sources are page markup rather than a stable API, this
// adapter is the most fragile of the three. Parse failures degrade to
// empty results instead of propagating.
package codechef

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/codetrail/codetrail/activity"
	"github.com/codetrail/codetrail/datekey"
	"github.com/codetrail/codetrail/fetch"
	"github.com/codetrail/codetrail/scriptdata"
)

// Platform is the tag this adapter stamps on its series.
const Platform = activity.CodeChef

const (
	defaultBaseURL    = "https://www.codechef.com"
	defaultHeatmapURL = "https://codechef-api.vercel.app"

	// ratingMarker precedes the contest-history array literal in the
	// profile page's inline script.
	ratingMarker = "all_rating"
)

// Client handles CodeChef requests.
type Client struct {
	httpClient *http.Client
	cache      fetch.Cacher
	logger     *slog.Logger
	baseURL    string
	heatmapURL string
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache      fetch.Cacher
	logger     *slog.Logger
	baseURL    string
	heatmapURL string
}

// WithHTTPCache sets the response cache.
func WithHTTPCache(cache fetch.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithBaseURL overrides the profile-page endpoint (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = baseURL }
}

// WithHeatmapURL overrides the heatmap endpoint (used by tests).
func WithHeatmapURL(heatmapURL string) Option {
	return func(c *config) { c.heatmapURL = heatmapURL }
}

// New creates a CodeChef client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		logger:     slog.Default(),
		baseURL:    defaultBaseURL,
		heatmapURL: defaultHeatmapURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		httpClient: fetch.NewClient(),
		cache:      cfg.cache,
		logger:     cfg.logger,
		baseURL:    cfg.baseURL,
		heatmapURL: cfg.heatmapURL,
	}, nil
}

type heatmapEntry struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// FetchSeries returns the user's per-day submission counts from the
// heatmap endpoint. Entries with unparseable dates are dropped rather
// than failing the whole series.
func (c *Client) FetchSeries(ctx context.Context, username string) ([]activity.DayCount, error) {
	c.logger.InfoContext(ctx, "fetching codechef heatmap", "username", username)

	endpoint := fmt.Sprintf("%s/heatmap/%s", c.heatmapURL, url.PathEscape(username))
	body, err := fetch.Get(ctx, c.cache, c.httpClient, endpoint, c.logger)
	if err != nil {
		return nil, err
	}

	var entries []heatmapEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("codechef heatmap: %w", activity.ErrParseFailure)
	}

	series := make([]activity.DayCount, 0, len(entries))
	for _, e := range entries {
		day, err := datekey.Parse(e.Date)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping heatmap entry", "date", e.Date, "error", err)
			continue
		}
		if e.Value < 0 {
			continue
		}
		series = append(series, activity.DayCount{Day: day, Count: e.Value})
	}
	return series, nil
}

// ratingEntry mirrors one element of the embedded all_rating literal.
// Upstream serializes every field as a string.
type ratingEntry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Rating   string `json:"rating"`
	Rank     string `json:"rank"`
	GetYear  string `json:"getyear"`
	GetMonth string `json:"getmonth"`
	GetDay   string `json:"getday"`
}

// FetchContestHistory scrapes the profile page for the embedded contest
// history. A missing marker or malformed literal yields an empty
// history: the markup is untrusted and partial recovery is never
// attempted. Only the page fetch itself can fail.
func (c *Client) FetchContestHistory(ctx context.Context, username string) (activity.ContestHistory, error) {
	c.logger.InfoContext(ctx, "fetching codechef contest history", "username", username)

	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(username))
	body, err := fetch.Get(ctx, c.cache, c.httpClient, endpoint, c.logger)
	if err != nil {
		return activity.ContestHistory{}, err
	}

	literal, found := scriptdata.Array(body, ratingMarker)
	if !found {
		c.logger.WarnContext(ctx, "contest history marker not found", "username", username)
		return activity.Summarize(nil), nil
	}

	var entries []ratingEntry
	if err := scriptdata.DecodeStrict(literal, &entries); err != nil {
		c.logger.WarnContext(ctx, "contest history literal did not parse", "username", username, "error", err)
		return activity.Summarize(nil), nil
	}

	records := make([]activity.ContestRecord, 0, len(entries))
	for _, e := range entries {
		record, ok := e.toRecord()
		if !ok {
			c.logger.WarnContext(ctx, "skipping malformed contest entry", "code", e.Code)
			continue
		}
		records = append(records, record)
	}
	return activity.Summarize(records), nil
}

func (e *ratingEntry) toRecord() (activity.ContestRecord, bool) {
	rating, err := strconv.Atoi(e.Rating)
	if err != nil {
		return activity.ContestRecord{}, false
	}
	rank, err := strconv.Atoi(e.Rank)
	if err != nil || rank < 1 {
		return activity.ContestRecord{}, false
	}
	// The page carries the end date as separate unpadded fields.
	day, err := datekey.Parse(e.GetYear + "-" + e.GetMonth + "-" + e.GetDay)
	if err != nil {
		return activity.ContestRecord{}, false
	}
	return activity.ContestRecord{
		Code:   e.Code,
		Name:   e.Name,
		Rating: rating,
		Rank:   rank,
		Date:   day,
	}, true
}
