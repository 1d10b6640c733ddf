package fred

import (
	"context"
	"sort"
	"time"

	"github.com/fredpanel/fredpanel/pkg/dates"
)

// DefaultWindow is the default number of most recent value dates kept per
// observation date when building a panel.
const DefaultWindow = 24

// PanelRow is one cell of a point-in-time panel in long form: the value for
// ValueDate that was the published figure as of ObservationDate, ranked by
// recency. PeriodsBack is 1 for the most recent value date known at that
// time, 2 for the one before it, and so on.
type PanelRow struct {
	ObservationDate time.Time `json:"observation_date"`
	PeriodsBack     int       `json:"periods_back"`
	Value           string    `json:"value"`
	ValueDate       time.Time `json:"value_date"`
}

// Panel pairs the long-form panel rows with the metadata sidecar of the
// underlying observation fetch. Rows are ordered by observation date
// ascending, then periods_back ascending.
type Panel struct {
	Rows []PanelRow `json:"rows"`
	Meta Meta       `json:"meta"`
}

// BuildPanel reconstructs what was known about a series as of each
// observation date. An observation qualifies for a date when the date falls
// inside the observation's realtime interval, both bounds inclusive. Per
// date, qualifying observations are ranked by value date descending and,
// when window > 0, cut off strictly at window rows; ties on value date are
// broken by the observations' original order. A date with no qualifying
// observations contributes no rows.
//
// Duplicate observation dates are collapsed; the output is keyed by
// (observation date, periods_back).
func BuildPanel(observations []Observation, observationDates []time.Time, window int) []PanelRow {
	if len(observations) == 0 || len(observationDates) == 0 {
		return nil
	}

	// Rank observations by value date descending once; the per-date scan
	// below inherits this order, which fixes the tie-break.
	order := make([]int, len(observations))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return observations[order[a]].ValueDate.After(observations[order[b]].ValueDate)
	})

	obsDates := dedupeSorted(observationDates)

	var rows []PanelRow
	for _, d := range obsDates {
		n := 0
		for _, idx := range order {
			o := observations[idx]
			if o.RealtimeStart.After(d) || d.After(o.RealtimeEnd) {
				continue
			}
			n++
			rows = append(rows, PanelRow{
				ObservationDate: d,
				PeriodsBack:     n,
				Value:           o.Value,
				ValueDate:       o.ValueDate,
			})
			if window > 0 && n == window {
				break
			}
		}
	}
	return rows
}

// GetPanel fetches the full revision history of a series over the span of
// the given observation dates and builds the point-in-time panel. With no
// observation dates the result is empty and no request is made.
func (c *Client) GetPanel(ctx context.Context, seriesID string, observationDates []time.Time, window int) (*Panel, error) {
	min, max, ok := dates.MinMax(observationDates)
	if !ok {
		return &Panel{}, nil
	}

	set, err := c.RevisionHistory(ctx, seriesID, min, max)
	if err != nil {
		return nil, err
	}

	return &Panel{
		Rows: BuildPanel(set.Observations, observationDates, window),
		Meta: set.Meta,
	}, nil
}

// dedupeSorted returns the dates sorted ascending with duplicates removed.
func dedupeSorted(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	copy(out, ts)
	sort.Slice(out, func(a, b int) bool { return out[a].Before(out[b]) })

	uniq := out[:0]
	for i, t := range out {
		if i == 0 || !t.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, t)
		}
	}
	return uniq
}
