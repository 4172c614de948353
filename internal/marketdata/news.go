package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/riskdesk/pkg/models"
)

// fetchHeadlines pulls recent headlines for a ticker from the configured
// RSS feed. Headlines are report garnish only: they never feed the
// factsheet, and a feed failure yields an empty list.
func (c *Client) fetchHeadlines(ctx context.Context, ticker string) ([]models.Headline, error) {
	if c.cfg.NewsFeedURL == "" || c.maxNews <= 0 {
		return nil, nil
	}

	parser := gofeed.NewParser()
	parser.Client = c.http

	feed, err := parser.ParseURLWithContext(fmt.Sprintf(c.cfg.NewsFeedURL, ticker), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	headlines := make([]models.Headline, 0, c.maxNews)
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		h := models.Headline{
			Title:  stripHTML(item.Title),
			Link:   item.Link,
			Source: feed.Title,
		}
		if item.PublishedParsed != nil {
			h.Published = *item.PublishedParsed
		}
		headlines = append(headlines, h)
		if len(headlines) >= c.maxNews {
			break
		}
	}
	return headlines, nil
}

// stripHTML reduces feed markup to plain text. Items frequently embed
// anchor tags and entities in titles and descriptions.
func stripHTML(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.TrimSpace(raw)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(doc.Text())
}
