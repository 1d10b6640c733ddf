package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fredpanel/fredpanel/pkg/dates"
)

// missingValue is the marker the API uses for observations without a value.
const missingValue = "."

// metaCount reads the declared total record count from a response's
// metadata sidecar. A response without it is a structural error.
func metaCount(meta Meta) (int, error) {
	v, ok := meta["count"]
	if !ok {
		return 0, fmt.Errorf("response missing %q key", "count")
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("response %q is not a number", "count")
	}
	return int(f), nil
}

// fetchObservations retrieves the complete observation listing for the
// given query, following the endpoint's count/offset pagination. The first
// response declares the total record count; while fewer records have been
// retrieved, the request is repeated with offset set to the number of
// records already fetched. A failed page abandons everything fetched so far.
func (c *Client) fetchObservations(ctx context.Context, q url.Values) ([]obsRow, Meta, error) {
	data, err := c.getJSON(ctx, "series/observations", q)
	if err != nil {
		return nil, nil, err
	}

	var rows []obsRow
	meta, err := envelope(data, "observations", &rows)
	if err != nil {
		return nil, nil, err
	}
	count, err := metaCount(meta)
	if err != nil {
		return nil, nil, err
	}

	for len(rows) < count {
		q.Set("offset", strconv.Itoa(len(rows)))
		page, err := c.getJSON(ctx, "series/observations", q)
		if err != nil {
			return nil, nil, err
		}
		var pageRows []obsRow
		if _, err := envelope(page, "observations", &pageRows); err != nil {
			return nil, nil, err
		}
		// An empty page with records still outstanding would loop forever.
		if len(pageRows) == 0 {
			return nil, nil, fmt.Errorf("pagination stalled: %d of %d records at offset %d", len(rows), count, len(rows))
		}
		rows = append(rows, pageRows...)
	}

	return rows, meta, nil
}

// RevisionHistory retrieves every observation record (all revisions of all
// value dates) whose realtime interval overlaps [realtimeStart,
// realtimeEnd]. Date fields are converted once, after all pages have been
// collected.
func (c *Client) RevisionHistory(ctx context.Context, seriesID string, realtimeStart, realtimeEnd time.Time) (*ObservationSet, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("realtime_start", dates.Format(realtimeStart))
	q.Set("realtime_end", dates.Format(realtimeEnd))

	rows, meta, err := c.fetchObservations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fred revision history %s: %w", seriesID, err)
	}

	set := &ObservationSet{
		Observations: make([]Observation, 0, len(rows)),
		Meta:         meta,
	}
	for _, r := range rows {
		rtStart, err := dates.Parse(r.RealtimeStart)
		if err != nil {
			return nil, fmt.Errorf("fred revision history %s: %w", seriesID, err)
		}
		rtEnd, err := dates.Parse(r.RealtimeEnd)
		if err != nil {
			return nil, fmt.Errorf("fred revision history %s: %w", seriesID, err)
		}
		valueDate, err := dates.Parse(r.Date)
		if err != nil {
			return nil, fmt.Errorf("fred revision history %s: %w", seriesID, err)
		}
		set.Observations = append(set.Observations, Observation{
			RealtimeStart: rtStart,
			RealtimeEnd:   rtEnd,
			ValueDate:     valueDate,
			Value:         r.Value,
		})
	}
	return set, nil
}

// GetSeries retrieves the latest-vintage values of a series between start
// and end, skipping missing-value markers.
func (c *Client) GetSeries(ctx context.Context, seriesID string, start, end time.Time) ([]SeriesPoint, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("observation_start", dates.Format(start))
	q.Set("observation_end", dates.Format(end))

	rows, _, err := c.fetchObservations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}

	points := make([]SeriesPoint, 0, len(rows))
	for _, r := range rows {
		if r.Value == missingValue {
			continue
		}
		d, err := dates.Parse(r.Date)
		if err != nil {
			return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
		}
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("fred series %s: parse value %q: %w", seriesID, r.Value, err)
		}
		points = append(points, SeriesPoint{Date: d, Value: v})
	}
	return points, nil
}
