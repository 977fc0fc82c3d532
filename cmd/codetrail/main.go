// Command codetrail aggregates coding-contest activity across
// platforms into a per-day series.
//
// Usage:
//
//	codetrail -leetcode alice -codeforces alice_cf -codechef chef_alice
//	codetrail -codechef chef_alice -contests
//	codetrail -leetcode alice -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/codetrail/codetrail"
	"github.com/codetrail/codetrail/cache"
	"github.com/codetrail/codetrail/heatmap"
)

func main() {
	leetcodeUser := flag.String("leetcode", "", "LeetCode username")
	codeforcesUser := flag.String("codeforces", "", "Codeforces handle")
	codechefUser := flag.String("codechef", "", "CodeChef username")
	contests := flag.Bool("contests", false, "print CodeChef contest history instead of the activity series")
	jsonOut := flag.Bool("json", false, "emit JSON instead of a terminal heatmap")
	debug := flag.Bool("debug", false, "enable debug logging")
	noCache := flag.Bool("no-cache", false, "disable response caching")
	cacheTTL := flag.Duration("cache-ttl", 6*time.Hour, "cache time-to-live")
	timeout := flag.Duration("timeout", 10*time.Second, "per-platform fetch timeout")
	flag.Parse()

	if *leetcodeUser == "" && *codeforcesUser == "" && *codechefUser == "" {
		fmt.Fprintln(os.Stderr, "Usage: codetrail [options]")
		fmt.Fprintln(os.Stderr, "\nAt least one platform username is required.")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	opts := []codetrail.Option{
		codetrail.WithLogger(logger),
		codetrail.WithTimeout(*timeout),
	}
	if !*noCache {
		httpCache, err := cache.New(*cacheTTL)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := httpCache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
			opts = append(opts, codetrail.WithHTTPCache(httpCache))
		}
	}

	ctx := context.Background()

	if *contests {
		if *codechefUser == "" {
			fmt.Fprintln(os.Stderr, "Error: -contests requires -codechef")
			os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
		}
		history, err := codetrail.ContestHistory(ctx, *codechefUser, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := outputJSON(history); err != nil {
			fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	days, err := codetrail.Aggregate(ctx, codetrail.Usernames{
		LeetCode:   *leetcodeUser,
		Codeforces: *codeforcesUser,
		CodeChef:   *codechefUser,
	}, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	codetrail.SortDays(days)

	if *jsonOut {
		if err := outputJSON(days); err != nil {
			fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(heatmap.Render(days))
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
