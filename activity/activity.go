// Package activity defines the common types shared by the platform
// adapters and the aggregator.
package activity

import (
	"context"
	"errors"

	"github.com/codetrail/codetrail/datekey"
	"github.com/codetrail/codetrail/fetch"
)

// Platform identifies one upstream judge.
type Platform string

// Supported platforms.
const (
	LeetCode   Platform = "leetcode"
	Codeforces Platform = "codeforces"
	CodeChef   Platform = "codechef"
)

// Platforms lists every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{LeetCode, Codeforces, CodeChef}
}

// Common errors returned by platform adapters.
var (
	ErrNotFound     = errors.New("username not found")
	ErrUnavailable  = errors.New("upstream unavailable")
	ErrParseFailure = errors.New("response no longer matches expected shape")

	// ErrInvalidInput re-exports the date normalizer's sentinel: it is
	// the only error that may propagate from direct misuse.
	ErrInvalidInput = datekey.ErrInvalidInput
)

// DayCount is one calendar day of activity as reported by a single adapter.
type DayCount struct {
	Day   datekey.Key
	Count int
}

// SubmissionDay is one merged calendar day across all platforms.
// TotalCount always equals the sum of PlatformCounts.
type SubmissionDay struct {
	Date           datekey.Key      `json:"date"`
	PlatformCounts map[Platform]int `json:"platformCounts"`
	TotalCount     int              `json:"totalCount"`
}

// ContestRecord is one contest participation recovered from a profile page.
type ContestRecord struct {
	Code   string      `json:"code"`
	Name   string      `json:"name"`
	Rating int         `json:"rating"`
	Rank   int         `json:"rank"`
	Date   datekey.Key `json:"date"`
}

// ContestHistory summarizes a user's contest participation.
// Contests preserves upstream chronological order. HighestRating and
// BestRank are zero when the history is empty.
type ContestHistory struct {
	ContestsParticipated int             `json:"contestsParticipated"`
	HighestRating        int             `json:"highestRating"`
	BestRank             int             `json:"bestRank"`
	Contests             []ContestRecord `json:"contestHistory"`
}

// Summarize builds a ContestHistory from records in upstream order.
func Summarize(records []ContestRecord) ContestHistory {
	h := ContestHistory{
		ContestsParticipated: len(records),
		Contests:             records,
	}
	for _, r := range records {
		if r.Rating > h.HighestRating {
			h.HighestRating = r.Rating
		}
		if r.Rank > 0 && (h.BestRank == 0 || r.Rank < h.BestRank) {
			h.BestRank = r.Rank
		}
	}
	return h
}

// Class is the failure taxonomy consumed by the aggregator's logging.
// It never changes merge behavior: every failure degrades to an empty
// series either way.
type Class string

// Failure classes.
const (
	ClassNotFound     Class = "not_found"
	ClassUnavailable  Class = "unavailable"
	ClassParseFailure Class = "parse_failure"
)

// Classify maps a raw adapter error onto the failure taxonomy so that
// operators can tell a missing user from a down upstream from a broken
// parser.
func Classify(err error) Class {
	switch {
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrParseFailure):
		return ClassParseFailure
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return ClassUnavailable
	}
	var httpErr *fetch.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 404 {
			return ClassNotFound
		}
		return ClassUnavailable
	}
	// Network-level failures and anything unrecognized.
	return ClassUnavailable
}
