package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fetchbot/internal/extract"
	"fetchbot/internal/httpclient"
	"fetchbot/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fetchbot/sites/weather")

// ForecastDay is one forecast panel. Nil fields were not on the page.
type ForecastDay struct {
	Low     *string `json:"low"`
	High    *string `json:"high"`
	Summary *string `json:"summary"`
}

var forecastSpec = extract.Spec{
	Root: "div.forecast",
	Fields: []extract.Field{
		{Name: "low", Selector: "em.min"},
		{Name: "high", Selector: "em.max"},
		{Name: "summary", Selector: "p"},
	},
}

// overlayFields are read from the front-page anchor of a locality.
var overlayFields = []extract.Field{
	{Name: "current", Selector: "span.val"},
	{Name: "high", Selector: "span.max", Last: true},
}

// Client scrapes BOM forecast pages.
type Client struct {
	http *httpclient.Client
}

func NewClient(http *httpclient.Client) *Client {
	return &Client{http: http}
}

// WithTimeout returns a client whose requests are each bounded by d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	return &Client{http: c.http.WithTimeout(d)}
}

// Forecast returns one ForecastDay per forecast panel, in page order. With
// overlay set, today's temperatures are replaced by the front page's
// current observation when one is listed for the locality; overlay
// failures never fail the call.
func (c *Client) Forecast(ctx context.Context, locality, region string, overlay bool) ([]ForecastDay, error) {
	ctx, span := tracer.Start(ctx, "weather:Forecast")
	defer span.End()

	locality = strings.TrimSpace(locality)
	region = strings.TrimSpace(region)
	if locality == "" || region == "" {
		span.SetStatus(codes.Error, "missing locality or region")
		return nil, scraper.Invalid("locality and region are required")
	}
	span.SetAttributes(attribute.String("locality", locality), attribute.String("region", region))

	path := fmt.Sprintf("/%s/forecasts/%s.shtml", strings.ToLower(region), strings.ToLower(locality))
	body, err := c.http.Get(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch forecast page")
		return nil, err
	}

	doc, err := extract.Parse(body)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse forecast page")
		return nil, err
	}
	days := parseForecast(doc)
	span.SetAttributes(attribute.Int("days", len(days)))

	if overlay {
		c.applyOverlay(ctx, locality, days)
	}

	return days, nil
}

func parseForecast(doc *goquery.Document) []ForecastDay {
	records := extract.Apply(doc.Selection, forecastSpec)
	days := make([]ForecastDay, 0, len(records))
	for _, r := range records {
		days = append(days, ForecastDay{
			Low:     r.Get("low"),
			High:    r.Get("high"),
			Summary: r.Get("summary"),
		})
	}
	return days
}

func (c *Client) applyOverlay(ctx context.Context, locality string, days []ForecastDay) {
	ctx, span := tracer.Start(ctx, "weather:applyOverlay")
	defer span.End()

	if len(days) == 0 {
		slog.DebugContext(ctx, "no forecast panels, skipping overlay", "locality", locality)
		return
	}

	body, err := c.http.Get(ctx, "/")
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "weather overlay fetch failed, keeping forecast values", "locality", locality, "err", err)
		return
	}
	doc, err := extract.Parse(body)
	if err != nil {
		slog.WarnContext(ctx, "weather overlay parse failed, keeping forecast values", "locality", locality, "err", err)
		return
	}

	current, high, ok := findOverlay(doc, locality)
	if !ok {
		slog.DebugContext(ctx, "no front page entry for locality", "locality", locality)
		return
	}
	if current != nil {
		days[0].Low = current
	}
	if high != nil {
		days[0].High = high
	}
	span.SetAttributes(attribute.Bool("applied", true))
}

// findOverlay looks for the front-page anchor titled "<Locality> forecast".
// The match is exact on the capitalized locality.
func findOverlay(doc *goquery.Document, locality string) (current, high *string, ok bool) {
	title := capitalize(locality) + " forecast"
	anchor := doc.Find("a[title]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("title", "") == title
	}).First()
	if anchor.Length() == 0 {
		return nil, nil, false
	}

	record, _ := extract.ApplyOne(anchor, overlayFields)
	return record.Get("current"), record.Get("high"), true
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
