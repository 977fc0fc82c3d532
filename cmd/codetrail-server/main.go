// Command codetrail-server exposes the aggregation engine over HTTP.
//
//	GET /v1/activity?leetcode=U&codeforces=U&codechef=U
//	GET /v1/contests/{handle}
//
// Configuration comes from the environment (a .env file is honored):
// PORT, CACHE_TTL, DEBUG.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/codetrail/codetrail"
	"github.com/codetrail/codetrail/cache"
)

func main() {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cacheTTL := 6 * time.Hour
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cacheTTL = parsed
		} else {
			logger.Warn("invalid CACHE_TTL, using default", "value", v)
		}
	}

	opts := []codetrail.Option{codetrail.WithLogger(logger)}
	httpCache, err := cache.New(cacheTTL)
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

	srv := &server{logger: logger, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/v1/activity", srv.activity)
	r.Get("/v1/contests/{handle}", srv.contests)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("listening", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil { //nolint:gosec // internal service, no timeouts needed at this layer
		logger.Error("server exited", "error", err)
		os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
	}
}

type server struct {
	logger *slog.Logger
	opts   []codetrail.Option
}

func (s *server) activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users := codetrail.Usernames{
		LeetCode:   q.Get("leetcode"),
		Codeforces: q.Get("codeforces"),
		CodeChef:   q.Get("codechef"),
	}

	days, err := codetrail.Aggregate(r.Context(), users, s.opts...)
	if err != nil {
		s.logger.Error("aggregate failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	codetrail.SortDays(days)
	writeJSON(w, days)
}

func (s *server) contests(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		http.Error(w, "missing handle", http.StatusBadRequest)
		return
	}

	history, err := codetrail.ContestHistory(r.Context(), handle, s.opts...)
	if err != nil {
		s.logger.Warn("contest history fetch failed", "handle", handle, "error", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, history)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // nothing to do if the client went away
}
