package comic

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"fetchbot/internal/httpclient"
	"fetchbot/internal/scraper"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fetchbot/sites/comic")

type Comic struct {
	Num   int    `json:"num"`
	Title string `json:"title"`
	Img   string `json:"img"`
	Alt   string `json:"alt"`
	Link  string `json:"link"`
}

// Client picks random xkcd comics.
type Client struct {
	http *httpclient.Client
	intN func(n int) int
}

func NewClient(http *httpclient.Client) *Client {
	return &Client{http: http, intN: rand.IntN}
}

// WithRand returns a client that draws comic numbers from r.
func (c *Client) WithRand(r *rand.Rand) *Client {
	return &Client{http: c.http, intN: r.IntN}
}

func (c *Client) WithTimeout(d time.Duration) *Client {
	return &Client{http: c.http.WithTimeout(d), intN: c.intN}
}

// Random returns a uniformly chosen comic between 1 and the latest issue.
// A catalog reporting no issues yields (nil, nil).
func (c *Client) Random(ctx context.Context) (*Comic, error) {
	ctx, span := tracer.Start(ctx, "comic:Random")
	defer span.End()

	latest, err := c.fetch(ctx, "/info.0.json")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch latest comic")
		return nil, err
	}
	if latest.Num <= 0 {
		return nil, nil
	}

	n := 1 + c.intN(latest.Num)
	span.SetAttributes(attribute.Int("latest", latest.Num), attribute.Int("num", n))

	comic, err := c.fetch(ctx, fmt.Sprintf("/%d/info.0.json", n))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch comic")
		return nil, err
	}
	comic.Link = fmt.Sprintf("%s/%d/", strings.TrimSuffix(c.http.BaseURL(), "/"), comic.Num)
	return comic, nil
}

func (c *Client) fetch(ctx context.Context, path string) (*Comic, error) {
	body, err := c.http.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var comic Comic
	if err := json.Unmarshal(body, &comic); err != nil {
		return nil, &scraper.TransportError{Source: "xkcd", URL: path, Err: fmt.Errorf("failed to decode comic: %w", err)}
	}
	return &comic, nil
}
