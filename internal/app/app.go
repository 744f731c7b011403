// Package app wires configuration, clients and scrapers into one object
// the CLI dispatches commands through.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"fetchbot/internal/browser"
	"fetchbot/internal/config"
	"fetchbot/internal/httpclient"
	"fetchbot/internal/logging"
	"fetchbot/internal/pool"
	"fetchbot/internal/scraper"
	"fetchbot/internal/sites/calendar"
	"fetchbot/internal/sites/comic"
	"fetchbot/internal/sites/feed"
	"fetchbot/internal/sites/weather"
	"fetchbot/internal/telemetry"
)

// App owns everything a command needs. Build it with New and release it
// with Close.
type App struct {
	config    config.Config
	logger    *slog.Logger
	pool      *pool.Pool
	registry  *scraper.Registry
	telemetry telemetry.Telemetry
}

type options struct {
	logWriter      io.Writer
	sessionFactory calendar.SessionFactory
}

type Option func(*options)

// WithLogWriter sends log output to w instead of stderr.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// WithSessionFactory replaces the browser-backed calendar session.
func WithSessionFactory(f calendar.SessionFactory) Option {
	return func(o *options) { o.sessionFactory = f }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{logWriter: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.New(cfg.Log.Level, o.logWriter)

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		pool:      pool.New(cfg.Pool.Size),
		telemetry: tel,
	}
	a.registry = a.buildRegistry(o)

	logger.Debug("app ready", "commands", a.registry.Names(), "pool", cfg.Pool.Size)
	return a, nil
}

func (a *App) buildRegistry(o options) *scraper.Registry {
	cfg := a.config

	weatherClient := weather.NewClient(httpclient.New(httpclient.Options{
		Source:           "bom",
		BaseURL:          cfg.Weather.BaseURL,
		UserAgent:        cfg.Weather.UserAgent,
		Timeout:          cfg.HTTP.Timeout,
		ProxyURL:         cfg.HTTP.ProxyURL,
		CloudflareBypass: true,
	}))
	feedClient := feed.NewClient(httpclient.New(httpclient.Options{
		Source:    "reddit",
		BaseURL:   cfg.Feed.BaseURL,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		ProxyURL:  cfg.HTTP.ProxyURL,
	}))
	comicClient := comic.NewClient(httpclient.New(httpclient.Options{
		Source:   "xkcd",
		BaseURL:  cfg.Comic.BaseURL,
		Timeout:  cfg.HTTP.Timeout,
		ProxyURL: cfg.HTTP.ProxyURL,
	}))

	rodConfig := calendar.RodConfig{
		LoginURL:    cfg.Calendar.LoginURL,
		StepTimeout: cfg.Calendar.StepTimeout,
		Browser: browser.Config{
			Headless: !cfg.Calendar.ShowUI,
			ProxyURL: cfg.HTTP.ProxyURL,
			Bin:      cfg.Calendar.BrowserBin,
		},
	}
	newCalendarClient := func(opts scraper.Options) *calendar.Client {
		factory := o.sessionFactory
		if factory == nil {
			factory = calendar.NewRodFactory(rodConfig.With(opts))
		}
		return calendar.NewClient(factory, cfg.Calendar.EmailDomain)
	}

	feedScraper := feed.NewFeedScraper(feedClient, cfg.Feed.DefaultLimit)
	r := scraper.NewRegistry(
		weather.NewWeatherScraper(weatherClient, !cfg.Weather.SkipOverlay),
		calendar.NewClassesScraper(newCalendarClient),
		feedScraper,
		comic.NewComicScraper(comicClient),
	)
	r.Alias("subreddit", feedScraper)
	for _, p := range feed.Presets(feedClient, cfg.Feed.DefaultLimit) {
		r.Register(p)
	}
	return r
}

func (a *App) Registry() *scraper.Registry { return a.registry }

func (a *App) Logger() *slog.Logger { return a.logger }

// Dispatch runs one command on the worker pool.
func (a *App) Dispatch(ctx context.Context, verb string, args []string, opts scraper.Options) (scraper.Content, error) {
	s, ok := a.registry.Get(verb)
	if !ok {
		return nil, scraper.Invalid("unknown command %q (try one of: %s)", verb, strings.Join(a.registry.Names(), ", "))
	}

	start := time.Now()
	content, err := pool.Do(ctx, a.pool, func(ctx context.Context) (scraper.Content, error) {
		return s.Scrape(ctx, args, opts)
	})
	if err != nil {
		a.logger.WarnContext(ctx, "command failed", "command", s.Name(), "duration", time.Since(start), "err", err)
		return nil, err
	}
	a.logger.DebugContext(ctx, "command done", "command", s.Name(), "duration", time.Since(start))
	return content, nil
}

// Result is the outcome of one command line passed to RunMany.
type Result struct {
	Line    string
	Verb    string
	Content scraper.Content
	Err     error
}

// RunMany runs every command line concurrently on the pool and returns the
// results in input order. A failing line does not affect the others.
func (a *App) RunMany(ctx context.Context, lines []string, opts scraper.Options) []Result {
	results := make([]Result, len(lines))
	jobs := make([]func(ctx context.Context) (scraper.Content, error), len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		results[i].Line = line
		if len(fields) == 0 {
			jobs[i] = func(context.Context) (scraper.Content, error) {
				return nil, scraper.Invalid("empty command")
			}
			continue
		}
		verb, args := fields[0], fields[1:]
		results[i].Verb = verb

		s, ok := a.registry.Get(verb)
		if !ok {
			jobs[i] = func(context.Context) (scraper.Content, error) {
				return nil, scraper.Invalid("unknown command %q", verb)
			}
			continue
		}
		jobs[i] = func(ctx context.Context) (scraper.Content, error) {
			return s.Scrape(ctx, args, opts)
		}
	}

	for i, out := range pool.All(ctx, a.pool, jobs) {
		results[i].Content, results[i].Err = out.Value, out.Err
	}
	return results
}

func (a *App) Close(ctx context.Context) error {
	if err := a.telemetry.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}
	return nil
}
