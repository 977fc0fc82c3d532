// Package codetrail aggregates a person's coding-contest activity from
// LeetCode, Codeforces, and CodeChef into one per-day series.
//
// Basic usage:
//
//	days, err := codetrail.Aggregate(ctx, codetrail.Usernames{
//	    LeetCode:   "alice",
//	    Codeforces: "alice_cf",
//	})
//	codetrail.SortDays(days)
//
// Any subset of the three usernames may be set; platforms without a
// username are skipped. A failing upstream contributes an empty series
// instead of failing the aggregation, so a user with one broken source
// still gets a complete view of the others.
package codetrail

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/codetrail/codetrail/activity"
	"github.com/codetrail/codetrail/codechef"
	"github.com/codetrail/codetrail/codeforces"
	"github.com/codetrail/codetrail/fetch"
	"github.com/codetrail/codetrail/leetcode"
)

// Usernames names one account per platform. Empty fields skip that
// platform entirely (no network call is made).
type Usernames struct {
	LeetCode   string
	Codeforces string
	CodeChef   string
}

// Option configures an Aggregate or ContestHistory call.
type Option func(*config)

type config struct {
	cache   fetch.Cacher
	logger  *slog.Logger
	timeout time.Duration
}

// WithHTTPCache sets the response cache shared by the adapters.
func WithHTTPCache(cache fetch.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithTimeout bounds each adapter's fetch. Expiry is treated the same
// as an unavailable upstream.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

func newConfig(opts ...Option) *config {
	cfg := &config{logger: slog.Default(), timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// fetchFunc is the common adapter capability the aggregator fans out over.
type fetchFunc func(ctx context.Context, username string) ([]activity.DayCount, error)

// source pairs one platform's fetcher with the username to fetch.
type source struct {
	fetch    fetchFunc
	platform activity.Platform
	username string
}

// result is one settled adapter outcome.
type result struct {
	err      error
	series   []activity.DayCount
	platform activity.Platform
}

// Aggregate fetches all requested platforms concurrently and merges
// their per-day counts. The returned days are in unspecified order;
// use SortDays for chronology. The error is reserved for client
// construction failure — upstream errors never surface here.
func Aggregate(ctx context.Context, users Usernames, opts ...Option) ([]activity.SubmissionDay, error) {
	cfg := newConfig(opts...)

	var sources []source
	if users.LeetCode != "" {
		client, err := leetcode.New(ctx, leetcode.WithLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{client.FetchSeries, leetcode.Platform, users.LeetCode})
	}
	if users.Codeforces != "" {
		client, err := codeforces.New(ctx,
			codeforces.WithLogger(cfg.logger), codeforces.WithHTTPCache(cfg.cache))
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{client.FetchSeries, codeforces.Platform, users.Codeforces})
	}
	if users.CodeChef != "" {
		client, err := codechef.New(ctx,
			codechef.WithLogger(cfg.logger), codechef.WithHTTPCache(cfg.cache))
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{client.FetchSeries, codechef.Platform, users.CodeChef})
	}

	return aggregate(ctx, cfg, sources), nil
}

// aggregate fans out over the sources, waits for every one to settle,
// then merges on a single goroutine. No merge state is shared with the
// adapter goroutines.
func aggregate(ctx context.Context, cfg *config, sources []source) []activity.SubmissionDay {
	results := make([]result, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
			defer cancel()
			series, err := src.fetch(callCtx, src.username)
			results[i] = result{platform: src.platform, series: series, err: err}
		}()
	}
	wg.Wait()

	return merge(ctx, cfg.logger, results)
}

// merge reduces settled adapter results into day-indexed records.
func merge(ctx context.Context, logger *slog.Logger, results []result) []activity.SubmissionDay {
	byDay := make(map[string]*activity.SubmissionDay)
	for _, res := range results {
		if res.err != nil {
			logger.WarnContext(ctx, "source degraded to empty series",
				"platform", res.platform,
				"class", activity.Classify(res.err),
				"error", res.err)
			continue
		}
		for _, dc := range res.series {
			day, ok := byDay[string(dc.Day)]
			if !ok {
				day = &activity.SubmissionDay{
					Date:           dc.Day,
					PlatformCounts: zeroCounts(),
				}
				byDay[string(dc.Day)] = day
			}
			day.PlatformCounts[res.platform] += dc.Count
			day.TotalCount += dc.Count
		}
	}

	days := make([]activity.SubmissionDay, 0, len(byDay))
	for _, day := range byDay {
		days = append(days, *day)
	}
	return days
}

// zeroCounts builds a counts map with every platform present, so days
// seen by one source still show explicit zeros for the others.
func zeroCounts() map[activity.Platform]int {
	counts := make(map[activity.Platform]int, 3)
	for _, p := range activity.Platforms() {
		counts[p] = 0
	}
	return counts
}

// SortDays orders a merged series chronologically in place. Aggregate
// itself makes no ordering promise.
func SortDays(days []activity.SubmissionDay) {
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
}

// ContestHistory fetches the CodeChef contest history for a username.
// Parse failures yield an empty history; only the page fetch itself can
// return an error.
func ContestHistory(ctx context.Context, codechefUsername string, opts ...Option) (activity.ContestHistory, error) {
	cfg := newConfig(opts...)

	client, err := codechef.New(ctx,
		codechef.WithLogger(cfg.logger), codechef.WithHTTPCache(cfg.cache))
	if err != nil {
		return activity.ContestHistory{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()
	return client.FetchContestHistory(callCtx, codechefUsername)
}
