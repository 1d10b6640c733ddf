package fred

import (
	"context"
	"fmt"
	"net/url"
)

// SearchSeries searches series metadata by free-text keywords. It issues a
// single request (no pagination) and returns the matching series listing
// together with the response's sibling top-level fields as metadata.
func (c *Client) SearchSeries(ctx context.Context, searchText string) (*SearchResult, error) {
	q := url.Values{}
	q.Set("search_text", searchText)

	data, err := c.getJSON(ctx, "series/search", q)
	if err != nil {
		return nil, err
	}

	var rows []seriesRow
	meta, err := envelope(data, "seriess", &rows)
	if err != nil {
		return nil, fmt.Errorf("fred search: %w", err)
	}

	result := &SearchResult{
		Series: make([]Series, 0, len(rows)),
		Meta:   meta,
	}
	for _, r := range rows {
		result.Series = append(result.Series, r.toSeries())
	}
	return result, nil
}

// SeriesInfo looks up the metadata record of a single series by ID.
func (c *Client) SeriesInfo(ctx context.Context, seriesID string) (*Series, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)

	data, err := c.getJSON(ctx, "series", q)
	if err != nil {
		return nil, err
	}

	var rows []seriesRow
	if _, err := envelope(data, "seriess", &rows); err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fred series %s: not found", seriesID)
	}

	s := rows[0].toSeries()
	return &s, nil
}
