package weather

import (
	"context"
	"fmt"

	"fetchbot/internal/scraper"
)

// WeatherScraper answers "weather <locality> <region>".
type WeatherScraper struct {
	client  *Client
	overlay bool
}

func NewWeatherScraper(client *Client, overlay bool) *WeatherScraper {
	return &WeatherScraper{client: client, overlay: overlay}
}

func (s *WeatherScraper) Name() string  { return "weather" }
func (s *WeatherScraper) Usage() string { return "weather <locality> <region>  (e.g. weather melbourne vic)" }

func (s *WeatherScraper) Scrape(ctx context.Context, args []string, opts scraper.Options) (scraper.Content, error) {
	if len(args) != 2 {
		return nil, scraper.Invalid("usage: %s", s.Usage())
	}
	locality, region := args[0], args[1]

	days, err := s.client.WithTimeout(opts.Timeout).Forecast(ctx, locality, region, s.overlay)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast for %s: %w", locality, err)
	}
	return NewWeatherContent(locality, region, days), nil
}
