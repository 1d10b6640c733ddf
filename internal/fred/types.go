package fred

import "time"

// Meta holds the sibling top-level fields of an API response: everything
// the endpoint returned besides the record listing itself (counts, realtime
// range, sort order, and so on). It is carried out-of-band next to the
// tabular data instead of being mixed into it.
type Meta map[string]any

// Series is one row of a series listing (search results, series lookup).
type Series struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	ObservationStart        time.Time `json:"observation_start"`
	ObservationEnd          time.Time `json:"observation_end"`
	Frequency               string    `json:"frequency"`
	FrequencyShort          string    `json:"frequency_short"`
	Units                   string    `json:"units"`
	UnitsShort              string    `json:"units_short"`
	SeasonalAdjustment      string    `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string    `json:"seasonal_adjustment_short"`
	LastUpdated             string    `json:"last_updated"`
	Popularity              int       `json:"popularity"`
	Notes                   string    `json:"notes"`
}

// SearchResult pairs a series listing with the response metadata sidecar.
type SearchResult struct {
	Series []Series `json:"series"`
	Meta   Meta     `json:"meta"`
}

// Observation is a single record of a series' revision history. Value is
// kept verbatim as reported by the API; "." marks a missing value.
// [RealtimeStart, RealtimeEnd] is the inclusive interval during which this
// record was the officially published value for ValueDate.
type Observation struct {
	RealtimeStart time.Time `json:"realtime_start"`
	RealtimeEnd   time.Time `json:"realtime_end"`
	ValueDate     time.Time `json:"value_date"`
	Value         string    `json:"value"`
}

// ObservationSet pairs a revision history with the response metadata sidecar.
type ObservationSet struct {
	Observations []Observation `json:"observations"`
	Meta         Meta          `json:"meta"`
}

// SeriesPoint is one parsed data point of a plain (latest-vintage) series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Release is one row of the release listing.
type Release struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PressRelease bool   `json:"press_release"`
	Link         string `json:"link"`
}

// ReleaseSet pairs the release listing with the response metadata sidecar.
type ReleaseSet struct {
	Releases []Release `json:"releases"`
	Meta     Meta      `json:"meta"`
}

// --- Wire types ---

// seriesRow is the wire form of a series listing row; dates arrive as
// YYYY-MM-DD strings.
type seriesRow struct {
	ID                      string `json:"id"`
	RealtimeStart           string `json:"realtime_start"`
	RealtimeEnd             string `json:"realtime_end"`
	Title                   string `json:"title"`
	ObservationStart        string `json:"observation_start"`
	ObservationEnd          string `json:"observation_end"`
	Frequency               string `json:"frequency"`
	FrequencyShort          string `json:"frequency_short"`
	Units                   string `json:"units"`
	UnitsShort              string `json:"units_short"`
	SeasonalAdjustment      string `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string `json:"seasonal_adjustment_short"`
	LastUpdated             string `json:"last_updated"`
	Popularity              int    `json:"popularity"`
	Notes                   string `json:"notes"`
}

// obsRow is the wire form of one observation record. Dates stay as strings
// until the whole paginated fetch has completed.
type obsRow struct {
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	Date          string `json:"date"`
	Value         string `json:"value"`
}

type releaseRow struct {
	ID            int    `json:"id"`
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	Name          string `json:"name"`
	PressRelease  bool   `json:"press_release"`
	Link          string `json:"link"`
}

// parseDate parses the date formats the API emits. Returns the zero time
// on failure; listing fields tolerate that, panel math does not and goes
// through pkg/dates instead.
func parseDate(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r seriesRow) toSeries() Series {
	return Series{
		ID:                      r.ID,
		Title:                   r.Title,
		ObservationStart:        parseDate(r.ObservationStart),
		ObservationEnd:          parseDate(r.ObservationEnd),
		Frequency:               r.Frequency,
		FrequencyShort:          r.FrequencyShort,
		Units:                   r.Units,
		UnitsShort:              r.UnitsShort,
		SeasonalAdjustment:      r.SeasonalAdjustment,
		SeasonalAdjustmentShort: r.SeasonalAdjustmentShort,
		LastUpdated:             r.LastUpdated,
		Popularity:              r.Popularity,
		Notes:                   r.Notes,
	}
}
