package scraper

import (
	"context"
	"time"
)

// Scraper is one verb of the bot: it validates its positional arguments,
// runs a single fetch pipeline and returns the Content to render.
type Scraper interface {
	Name() string
	Usage() string
	Scrape(ctx context.Context, args []string, opts Options) (Content, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

// Options are per-call overrides of the configured defaults.
type Options struct {
	Timeout time.Duration // per outbound request, or per browser step; zero keeps the default
	ShowUI  bool          // run the browser headed
}
