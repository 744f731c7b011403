package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"fetchbot/internal/httpclient"
	"fetchbot/internal/scraper"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fetchbot/sites/feed")

// Post is one entry of a community's ranked listing.
type Post struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title               string `json:"title"`
				URL                 string `json:"url"`
				URLOverriddenByDest string `json:"url_overridden_by_dest"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Client reads the public JSON listing of a reddit community.
type Client struct {
	http *httpclient.Client
}

func NewClient(http *httpclient.Client) *Client {
	return &Client{http: http}
}

func (c *Client) WithTimeout(d time.Duration) *Client {
	return &Client{http: c.http.WithTimeout(d)}
}

// Top returns up to limit posts of community in listing order. The first
// limit entries are taken before entries without a link are dropped, so
// fewer than limit posts may come back.
func (c *Client) Top(ctx context.Context, community string, limit int) ([]Post, error) {
	ctx, span := tracer.Start(ctx, "feed:Top")
	defer span.End()

	community = strings.TrimPrefix(strings.TrimSpace(community), "r/")
	if community == "" {
		span.SetStatus(codes.Error, "missing community")
		return nil, scraper.Invalid("community is required")
	}
	if limit < 0 {
		span.SetStatus(codes.Error, "negative limit")
		return nil, scraper.Invalid("limit must not be negative, got %d", limit)
	}
	span.SetAttributes(attribute.String("community", community), attribute.Int("limit", limit))
	if limit == 0 {
		return []Post{}, nil
	}

	path := fmt.Sprintf("/r/%s.json", url.PathEscape(community))
	body, err := c.http.Get(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return nil, fmt.Errorf("failed to fetch community '%s': %w", community, err)
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		span.SetStatus(codes.Error, "failed to decode listing")
		return nil, &scraper.TransportError{Source: "reddit", URL: path, Err: fmt.Errorf("failed to decode listing: %w", err)}
	}

	children := l.Data.Children
	if len(children) > limit {
		children = children[:limit]
	}
	posts := make([]Post, 0, len(children))
	for _, child := range children {
		link := child.Data.URLOverriddenByDest
		if link == "" {
			link = child.Data.URL
		}
		if link == "" {
			continue
		}
		posts = append(posts, Post{Title: child.Data.Title, URL: link})
	}

	span.SetAttributes(attribute.Int("posts", len(posts)))
	return posts, nil
}
