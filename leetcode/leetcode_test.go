package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/codetrail/codetrail/activity"
	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	client.httpClient = srv.Client()
	return client
}

func TestFetchSeries(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			t.Errorf("path = %q, want /graphql", r.URL.Path)
		}
		var req struct {
			Query     string            `json:"query"`
			Variables map[string]string `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Variables["username"] != "alice" {
			t.Errorf("username = %q, want alice", req.Variables["username"])
		}
		// 1709294400 = 2024-03-01T12:00:00Z, 1709337600 = 2024-03-02T00:00:00Z
		w.Write([]byte(`{"data":{"matchedUser":{"userCalendar":{"submissionCalendar":"{\"1709294400\":2,\"1709337600\":5}"}}}}`)) //nolint:errcheck
	}

	client := newTestClient(t, handler)
	series, err := client.FetchSeries(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Day < series[j].Day })
	want := []activity.DayCount{
		{Day: "2024-03-01", Count: 2},
		{Day: "2024-03-02", Count: 5},
	}
	if diff := cmp.Diff(want, series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchSeriesUnknownUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"matchedUser":null}}`)) //nolint:errcheck
	})

	_, err := client.FetchSeries(context.Background(), "nobody")
	if !errors.Is(err, activity.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchSeriesEmptyCalendar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"matchedUser":{"userCalendar":{"submissionCalendar":""}}}}`)) //nolint:errcheck
	})

	series, err := client.FetchSeries(context.Background(), "newbie")
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("series = %v, want empty", series)
	}
}

func TestFetchSeriesMalformedCalendar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":{"matchedUser":{"userCalendar":{"submissionCalendar":"not json"}}}}`)) //nolint:errcheck
	})

	_, err := client.FetchSeries(context.Background(), "alice")
	if !errors.Is(err, activity.ErrParseFailure) {
		t.Errorf("err = %v, want ErrParseFailure", err)
	}
}
