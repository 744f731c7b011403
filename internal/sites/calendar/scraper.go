package calendar

import (
	"context"
	"fmt"

	"fetchbot/internal/scraper"
)

// ClientFunc builds the Client for one call, so per-call options such as
// the step timeout or a headed browser reach the session.
type ClientFunc func(opts scraper.Options) *Client

// ClassesScraper answers "classes <username> <password>".
type ClassesScraper struct {
	newClient ClientFunc
}

func NewClassesScraper(newClient ClientFunc) *ClassesScraper {
	return &ClassesScraper{newClient: newClient}
}

func (s *ClassesScraper) Name() string  { return "classes" }
func (s *ClassesScraper) Usage() string { return "classes <username> <password>" }

func (s *ClassesScraper) Scrape(ctx context.Context, args []string, opts scraper.Options) (scraper.Content, error) {
	if len(args) != 2 {
		return nil, scraper.Invalid("usage: %s", s.Usage())
	}

	classes, err := s.newClient(opts).Classes(ctx, args[0], args[1])
	if err != nil {
		return nil, fmt.Errorf("failed to fetch classes: %w", err)
	}
	return NewClassesContent(classes), nil
}
