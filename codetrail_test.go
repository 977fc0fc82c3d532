package codetrail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codetrail/codetrail/activity"
	"github.com/google/go-cmp/cmp"
)

func testConfig() *config {
	return &config{logger: slog.Default(), timeout: 5 * time.Second}
}

func fixedSeries(series []activity.DayCount) fetchFunc {
	return func(context.Context, string) ([]activity.DayCount, error) {
		return series, nil
	}
}

func failing(err error) fetchFunc {
	return func(context.Context, string) ([]activity.DayCount, error) {
		return nil, err
	}
}

func TestAggregateMergesAllSources(t *testing.T) {
	sources := []source{
		{fixedSeries([]activity.DayCount{{Day: "2024-03-01", Count: 2}}), activity.LeetCode, "a"},
		{fixedSeries([]activity.DayCount{{Day: "2024-03-01", Count: 1}, {Day: "2024-03-02", Count: 3}}), activity.Codeforces, "b"},
		{failing(fmt.Errorf("fetch: %w", activity.ErrUnavailable)), activity.CodeChef, "c"},
	}

	days := aggregate(context.Background(), testConfig(), sources)
	SortDays(days)

	want := []activity.SubmissionDay{
		{
			Date: "2024-03-01",
			PlatformCounts: map[activity.Platform]int{
				activity.LeetCode: 2, activity.Codeforces: 1, activity.CodeChef: 0,
			},
			TotalCount: 3,
		},
		{
			Date: "2024-03-02",
			PlatformCounts: map[activity.Platform]int{
				activity.LeetCode: 0, activity.Codeforces: 3, activity.CodeChef: 0,
			},
			TotalCount: 3,
		},
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateSumInvariant(t *testing.T) {
	sources := []source{
		{fixedSeries([]activity.DayCount{{Day: "2024-01-01", Count: 7}, {Day: "2024-01-03", Count: 2}}), activity.LeetCode, "a"},
		{fixedSeries([]activity.DayCount{{Day: "2024-01-01", Count: 4}}), activity.Codeforces, "b"},
		{fixedSeries([]activity.DayCount{{Day: "2024-01-02", Count: 1}}), activity.CodeChef, "c"},
	}

	for _, day := range aggregate(context.Background(), testConfig(), sources) {
		sum := 0
		for _, n := range day.PlatformCounts {
			sum += n
		}
		if day.TotalCount != sum {
			t.Errorf("day %s: TotalCount = %d, sum of platform counts = %d", day.Date, day.TotalCount, sum)
		}
	}
}

// One deterministically failing source must not affect the others.
func TestAggregatePartialFailure(t *testing.T) {
	for _, broken := range activity.Platforms() {
		t.Run(string(broken), func(t *testing.T) {
			healthy := []activity.DayCount{{Day: "2024-05-05", Count: 1}}
			var sources []source
			for _, p := range activity.Platforms() {
				if p == broken {
					sources = append(sources, source{failing(errors.New("boom")), p, "u"})
					continue
				}
				sources = append(sources, source{fixedSeries(healthy), p, "u"})
			}

			days := aggregate(context.Background(), testConfig(), sources)
			if len(days) != 1 {
				t.Fatalf("got %d days, want 1", len(days))
			}
			day := days[0]
			if day.PlatformCounts[broken] != 0 {
				t.Errorf("broken platform %s count = %d, want 0", broken, day.PlatformCounts[broken])
			}
			if day.TotalCount != 2 {
				t.Errorf("TotalCount = %d, want 2", day.TotalCount)
			}
		})
	}
}

func TestAggregateAllSourcesFail(t *testing.T) {
	sources := []source{
		{failing(activity.ErrNotFound), activity.LeetCode, "a"},
		{failing(activity.ErrUnavailable), activity.Codeforces, "b"},
		{failing(activity.ErrParseFailure), activity.CodeChef, "c"},
	}

	days := aggregate(context.Background(), testConfig(), sources)
	if len(days) != 0 {
		t.Errorf("days = %v, want empty", days)
	}
}

// No usernames means no sources and no network calls.
func TestAggregateNoUsernames(t *testing.T) {
	days, err := Aggregate(context.Background(), Usernames{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("days = %v, want empty", days)
	}
}

func TestAggregateTimeoutDegrades(t *testing.T) {
	var started atomic.Int32
	slow := func(ctx context.Context, _ string) ([]activity.DayCount, error) {
		started.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	cfg := testConfig()
	cfg.timeout = 20 * time.Millisecond
	sources := []source{
		{slow, activity.LeetCode, "a"},
		{fixedSeries([]activity.DayCount{{Day: "2024-02-02", Count: 5}}), activity.Codeforces, "b"},
	}

	days := aggregate(context.Background(), cfg, sources)
	if started.Load() != 1 {
		t.Fatalf("slow source started %d times", started.Load())
	}
	if len(days) != 1 || days[0].PlatformCounts[activity.Codeforces] != 5 {
		t.Errorf("days = %+v, want the codeforces day only", days)
	}
}

func TestSortDays(t *testing.T) {
	days := []activity.SubmissionDay{
		{Date: "2024-03-02"},
		{Date: "2023-12-31"},
		{Date: "2024-03-01"},
	}
	SortDays(days)
	want := []string{"2023-12-31", "2024-03-01", "2024-03-02"}
	for i, w := range want {
		if string(days[i].Date) != w {
			t.Errorf("days[%d].Date = %s, want %s", i, days[i].Date, w)
		}
	}
}
