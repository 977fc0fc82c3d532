// Package heatmap renders an aggregated submission series as a
// calendar-style grid for the terminal.
package heatmap

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/codetrail/codetrail/activity"
	"github.com/codetrail/codetrail/datekey"
)

// cell glyphs, darkest to brightest.
const (
	cellEmpty  = "·"
	cellFilled = "■"
)

// intensity colors from low to high activity.
var levels = []*color.Color{
	color.New(color.FgHiBlack),
	color.New(color.FgGreen),
	color.New(color.FgHiGreen),
	color.New(color.FgYellow),
	color.New(color.FgHiYellow),
}

// Render draws the series as one row per week, GitHub-contribution
// style, covering the span between the earliest and latest day present.
// Days without activity render as dim dots. An empty series renders a
// short placeholder line.
func Render(days []activity.SubmissionDay) string {
	if len(days) == 0 {
		return "no submission activity\n"
	}

	counts := make(map[datekey.Key]int, len(days))
	first, last := days[0].Date, days[0].Date
	maxCount := 0
	for _, d := range days {
		counts[d.Date] = d.TotalCount
		if d.Date < first {
			first = d.Date
		}
		if d.Date > last {
			last = d.Date
		}
		if d.TotalCount > maxCount {
			maxCount = d.TotalCount
		}
	}

	start, err := first.Time()
	if err != nil {
		return "no submission activity\n"
	}
	end, err := last.Time()
	if err != nil {
		return "no submission activity\n"
	}
	// Align the grid to the Monday on or before the first day.
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, -1)
	}

	var out strings.Builder
	total := 0
	for _, d := range days {
		total += d.TotalCount
	}
	fmt.Fprintf(&out, "submissions %s to %s (%d total)\n", first, last, total)
	out.WriteString("        Mo Tu We Th Fr Sa Su\n")

	for week := start; !week.After(end); week = week.AddDate(0, 0, 7) {
		fmt.Fprintf(&out, "%s  ", week.Format("Jan 02"))
		for dow := range 7 {
			day := week.AddDate(0, 0, dow)
			count := counts[datekey.FromTime(day)]
			out.WriteString(cell(count, maxCount))
			out.WriteString("  ")
		}
		out.WriteString("\n")
	}
	return out.String()
}

func cell(count, maxCount int) string {
	if count <= 0 {
		return levels[0].Sprint(cellEmpty)
	}
	// Scale to the brighter levels; max activity gets the top color.
	idx := 1 + (count*(len(levels)-2))/max(maxCount, 1)
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	return levels[idx].Sprint(cellFilled)
}
