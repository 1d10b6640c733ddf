package fred

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedItem is one entry of a series' RSS release feed.
type FeedItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary,omitempty"`
}

// SeriesFeed reads the RSS feed FRED publishes for a series, listing its
// recent data releases. The feed lives on the website, not the API, so it
// needs no key.
func (c *Client) SeriesFeed(ctx context.Context, seriesID string) ([]FeedItem, error) {
	q := url.Values{}
	q.Set("sid", seriesID)

	parser := gofeed.NewParser()
	parser.UserAgent = "fredpanel/1.0"

	feed, err := parser.ParseURLWithContext(c.feedURL+"?"+q.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("fred feed %s: %w", seriesID, err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		item := FeedItem{
			Title:   it.Title,
			Link:    it.Link,
			Summary: it.Description,
		}
		if it.PublishedParsed != nil {
			item.Published = *it.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}
