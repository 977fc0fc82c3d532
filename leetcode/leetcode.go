// Package leetcode fetches a user's submission activity from the
// LeetCode GraphQL API.
package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/codetrail/codetrail/activity"
	"github.com/codetrail/codetrail/datekey"
	"github.com/codetrail/codetrail/fetch"
)

// Platform is the tag this adapter stamps on its series.
const Platform = activity.LeetCode

const defaultBaseURL = "https://leetcode.com"

// calendarQuery asks only for the sparse submission calendar: a
// JSON-encoded string mapping epoch-second keys to counts.
const calendarQuery = `query userProfileCalendar($username: String!) {
  matchedUser(username: $username) {
    userCalendar {
      submissionCalendar
    }
  }
}`

// Client handles LeetCode requests.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// Option configures a Client.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	baseURL string
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = baseURL }
}

// New creates a LeetCode client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default(), baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		httpClient: fetch.NewClient(),
		logger:     cfg.logger,
		baseURL:    cfg.baseURL,
	}, nil
}

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type calendarResponse struct {
	Data struct {
		MatchedUser *struct {
			UserCalendar struct {
				SubmissionCalendar string `json:"submissionCalendar"`
			} `json:"userCalendar"`
		} `json:"matchedUser"`
	} `json:"data"`
}

// FetchSeries returns the user's per-day submission counts. An existing
// user with no calendar yields an empty series; an unknown user yields
// ErrNotFound.
func (c *Client) FetchSeries(ctx context.Context, username string) ([]activity.DayCount, error) {
	c.logger.InfoContext(ctx, "fetching leetcode calendar", "username", username)

	payload, err := json.Marshal(graphqlRequest{
		Query:     calendarQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, err
	}

	body, err := fetch.PostJSON(ctx, c.httpClient, c.baseURL+"/graphql", payload, c.logger)
	if err != nil {
		return nil, err
	}

	var resp calendarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("leetcode response: %w", activity.ErrParseFailure)
	}

	if resp.Data.MatchedUser == nil {
		return nil, fmt.Errorf("leetcode user %q: %w", username, activity.ErrNotFound)
	}

	raw := resp.Data.MatchedUser.UserCalendar.SubmissionCalendar
	if raw == "" {
		// Empty profile: valid user, nothing submitted yet.
		return []activity.DayCount{}, nil
	}

	var calendar map[string]int
	if err := json.Unmarshal([]byte(raw), &calendar); err != nil {
		return nil, fmt.Errorf("leetcode submission calendar: %w", activity.ErrParseFailure)
	}

	series := make([]activity.DayCount, 0, len(calendar))
	for key, count := range calendar {
		sec, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("leetcode calendar key %q: %w", key, activity.ErrParseFailure)
		}
		day, err := datekey.FromUnixSeconds(sec)
		if err != nil {
			return nil, fmt.Errorf("leetcode calendar key %q: %w", key, activity.ErrParseFailure)
		}
		if count < 0 {
			continue
		}
		series = append(series, activity.DayCount{Day: day, Count: count})
	}
	return series, nil
}
