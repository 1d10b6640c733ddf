package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fredpanel/fredpanel/pkg/dates"
)

// Releases retrieves the listing of all data releases.
func (c *Client) Releases(ctx context.Context) (*ReleaseSet, error) {
	data, err := c.getJSON(ctx, "releases", nil)
	if err != nil {
		return nil, err
	}

	var rows []releaseRow
	meta, err := envelope(data, "releases", &rows)
	if err != nil {
		return nil, fmt.Errorf("fred releases: %w", err)
	}

	set := &ReleaseSet{
		Releases: make([]Release, 0, len(rows)),
		Meta:     meta,
	}
	for _, r := range rows {
		set.Releases = append(set.Releases, Release{
			ID:           r.ID,
			Name:         r.Name,
			PressRelease: r.PressRelease,
			Link:         r.Link,
		})
	}
	return set, nil
}

// VintageDates retrieves every date on which the given series was revised
// or first released. The endpoint paginates the same way observations do:
// the first response declares a total count, and subsequent requests pass
// offset equal to the number of records already fetched.
func (c *Client) VintageDates(ctx context.Context, seriesID string) ([]time.Time, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)

	data, err := c.getJSON(ctx, "series/vintagedates", q)
	if err != nil {
		return nil, fmt.Errorf("fred vintage dates %s: %w", seriesID, err)
	}

	var raw []string
	meta, err := envelope(data, "vintage_dates", &raw)
	if err != nil {
		return nil, fmt.Errorf("fred vintage dates %s: %w", seriesID, err)
	}
	count, err := metaCount(meta)
	if err != nil {
		return nil, fmt.Errorf("fred vintage dates %s: %w", seriesID, err)
	}

	for len(raw) < count {
		q.Set("offset", strconv.Itoa(len(raw)))
		page, err := c.getJSON(ctx, "series/vintagedates", q)
		if err != nil {
			return nil, fmt.Errorf("fred vintage dates %s: %w", seriesID, err)
		}
		var pageRaw []string
		if _, err := envelope(page, "vintage_dates", &pageRaw); err != nil {
			return nil, fmt.Errorf("fred vintage dates %s: %w", seriesID, err)
		}
		if len(pageRaw) == 0 {
			return nil, fmt.Errorf("fred vintage dates %s: pagination stalled at offset %d", seriesID, len(raw))
		}
		raw = append(raw, pageRaw...)
	}

	out, err := dates.ParseAll(raw)
	if err != nil {
		return nil, fmt.Errorf("fred vintage dates %s: %w", seriesID, err)
	}
	return out, nil
}
