package comic

import (
	"context"
	"fmt"

	"fetchbot/internal/scraper"
)

// ComicScraper answers "comic".
type ComicScraper struct {
	client *Client
}

func NewComicScraper(client *Client) *ComicScraper {
	return &ComicScraper{client: client}
}

func (s *ComicScraper) Name() string  { return "comic" }
func (s *ComicScraper) Usage() string { return "comic  (a random xkcd)" }

func (s *ComicScraper) Scrape(ctx context.Context, args []string, opts scraper.Options) (scraper.Content, error) {
	if len(args) != 0 {
		return nil, scraper.Invalid("usage: %s", s.Usage())
	}

	c, err := s.client.WithTimeout(opts.Timeout).Random(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comic: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("could not fetch a comic: %w", scraper.ErrNoResult)
	}
	return NewComicContent(*c), nil
}
