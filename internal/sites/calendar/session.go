package calendar

import (
	"context"
	"time"

	"fetchbot/internal/browser"
	"fetchbot/internal/scraper"

	"github.com/go-rod/rod"
)

type Credentials struct {
	Email    string
	Password string
}

// Session is one scripted portal login. Close must release every resource
// the session holds and is called exactly once by the Client.
type Session interface {
	Authenticate(ctx context.Context, creds Credentials) error
	ExtractClasses(ctx context.Context) ([]string, error)
	Close() error
}

type SessionFactory func(ctx context.Context) (Session, error)

type RodConfig struct {
	LoginURL    string
	StepTimeout time.Duration
	Browser     browser.Config
}

// With applies per-call overrides.
func (c RodConfig) With(opts scraper.Options) RodConfig {
	if opts.Timeout > 0 {
		c.StepTimeout = opts.Timeout
	}
	if opts.ShowUI {
		c.Browser.Headless = false
	}
	return c
}

// NewRodFactory returns a SessionFactory that drives a real browser.
func NewRodFactory(cfg RodConfig) SessionFactory {
	return func(ctx context.Context) (Session, error) {
		b, err := browser.New(ctx, cfg.Browser)
		if err != nil {
			return nil, &scraper.AutomationError{Step: stepLaunch, Err: err}
		}

		page, err := b.NewPage(ctx)
		if err != nil {
			_ = b.Close()
			return nil, &scraper.AutomationError{Step: stepLaunch, Err: err}
		}

		return &rodSession{
			browser:     b,
			page:        page,
			loginURL:    cfg.LoginURL,
			stepTimeout: cfg.StepTimeout,
		}, nil
	}
}

type rodSession struct {
	browser     *browser.Browser
	page        *rod.Page
	loginURL    string
	stepTimeout time.Duration
}

func (s *rodSession) Authenticate(ctx context.Context, creds Credentials) error {
	page := s.page.Context(ctx)
	for _, st := range loginSteps(s.loginURL, creds) {
		if err := st.run(page.Timeout(s.stepTimeout)); err != nil {
			return &scraper.AutomationError{Step: st.name, Err: err}
		}
	}
	dismissStaySignedIn(page)
	return nil
}

func (s *rodSession) ExtractClasses(ctx context.Context) ([]string, error) {
	html, err := calendarHTML(s.page.Context(ctx).Timeout(s.stepTimeout))
	if err != nil {
		return nil, &scraper.AutomationError{Step: stepCalendar, Err: err}
	}
	classes, err := parseClasses(html)
	if err != nil {
		return nil, &scraper.AutomationError{Step: stepParse, Err: err}
	}
	return classes, nil
}

func (s *rodSession) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	return s.browser.Close()
}
