package timeline

import (
	"time"

	"github.com/alexanderramin/compass/internal/domain"
)

type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

// Item is a schedulable entity reduced to its date fields. All dates are
// raw strings as delivered by the API; unparseable values are skipped.
type Item struct {
	Start      string
	End        string
	Target     string
	ChildDates []string
}

// Range is the visible window and axis granularity for a timeline view.
type Range struct {
	Start         time.Time
	End           time.Time
	Granularity   Granularity
	UsedFallback  bool
	FocusedSubset bool
}

const minBufferDays = 7

// ComputeRange derives the visible window for a set of scheduled items.
//
// When a subset of items carries granular child dates (e.g. feature
// completion dates), the window zooms to that subset instead of stretching
// across items with no meaningful schedule. When nothing has a usable date
// the window falls back to one month before now through three months after.
func ComputeRange(items []Item, now time.Time) Range {
	focused := itemsWithChildDates(items)
	scope := items
	focusedSubset := false
	if len(focused) > 0 {
		scope = focused
		focusedSubset = true
	}

	dates := collectDates(scope)
	if len(dates) == 0 {
		return Range{
			Start:        now.AddDate(0, -1, 0),
			End:          now.AddDate(0, 3, 0),
			Granularity:  GranularityMonth,
			UsedFallback: true,
		}
	}

	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}

	span := max.Sub(min)
	buffer := span / 10
	if buffer < minBufferDays*24*time.Hour {
		// Floor so a same-day span still renders with visible padding.
		buffer = minBufferDays * 24 * time.Hour
	}

	return Range{
		Start:         min.Add(-buffer),
		End:           max.Add(buffer),
		Granularity:   granularityForSpan(span),
		FocusedSubset: focusedSubset,
	}
}

// ItemsFromReleases adapts releases (with their features) for ComputeRange.
func ItemsFromReleases(releases []domain.Release) []Item {
	items := make([]Item, 0, len(releases))
	for _, r := range releases {
		item := Item{Start: r.StartDate, End: r.EndDate, Target: r.TargetDate}
		for _, f := range r.Features {
			if f.CompletionDate != "" {
				item.ChildDates = append(item.ChildDates, f.CompletionDate)
			}
		}
		items = append(items, item)
	}
	return items
}

func itemsWithChildDates(items []Item) []Item {
	var out []Item
	for _, it := range items {
		for _, d := range it.ChildDates {
			if d != "" {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func collectDates(items []Item) []time.Time {
	var dates []time.Time
	add := func(raw string) {
		if t, ok := parseDate(raw); ok {
			dates = append(dates, t)
		}
	}
	for _, it := range items {
		add(it.Start)
		add(it.End)
		add(it.Target)
		for _, d := range it.ChildDates {
			add(d)
		}
	}
	return dates
}

// granularityForSpan keeps axis labels readable: boundaries are inclusive,
// so a span of exactly 30 days still renders daily.
func granularityForSpan(span time.Duration) Granularity {
	days := span.Hours() / 24
	switch {
	case days <= 30:
		return GranularityDay
	case days <= 90:
		return GranularityWeek
	case days <= 365:
		return GranularityMonth
	default:
		return GranularityQuarter
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// parseDate accepts the date shapes the API is known to emit. A malformed
// value is reported as absent rather than failing the computation.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
