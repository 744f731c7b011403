package feed

import (
	"context"
	"fmt"
	"strconv"

	"fetchbot/internal/scraper"
)

// FeedScraper answers "feed <community> [limit]". A scraper built with
// NewPresetScraper is bound to one community and only takes the limit.
type FeedScraper struct {
	name         string
	community    string // fixed community for presets
	client       *Client
	defaultLimit int
}

func NewFeedScraper(client *Client, defaultLimit int) *FeedScraper {
	return &FeedScraper{name: "feed", client: client, defaultLimit: defaultLimit}
}

func NewPresetScraper(name, community string, client *Client, defaultLimit int) *FeedScraper {
	return &FeedScraper{name: name, community: community, client: client, defaultLimit: defaultLimit}
}

// Presets are the fixed-community verbs.
func Presets(client *Client, defaultLimit int) []*FeedScraper {
	return []*FeedScraper{
		NewPresetScraper("meme", "memes", client, defaultLimit),
		NewPresetScraper("dankmeme", "dankmemes", client, defaultLimit),
		NewPresetScraper("shitpost", "shitposting", client, defaultLimit),
	}
}

func (s *FeedScraper) Name() string { return s.name }

func (s *FeedScraper) Usage() string {
	if s.community != "" {
		return fmt.Sprintf("%s [limit]  (top posts from r/%s)", s.name, s.community)
	}
	return s.name + " <community> [limit]"
}

// Community is the fixed community of a preset, or "".
func (s *FeedScraper) Community() string { return s.community }

func (s *FeedScraper) Scrape(ctx context.Context, args []string, opts scraper.Options) (scraper.Content, error) {
	community := s.community
	if community == "" {
		if len(args) == 0 {
			return nil, scraper.Invalid("usage: %s", s.Usage())
		}
		community, args = args[0], args[1:]
	}
	if len(args) > 1 {
		return nil, scraper.Invalid("usage: %s", s.Usage())
	}

	limit := s.defaultLimit
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, scraper.Invalid("limit must be a number, got %q", args[0])
		}
		limit = n
	}

	posts, err := s.client.WithTimeout(opts.Timeout).Top(ctx, community, limit)
	if err != nil {
		return nil, err
	}
	return NewFeedContent(community, posts), nil
}
