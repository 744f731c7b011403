package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fetchbot/internal/scraper"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fetchbot/sites/calendar")

// Client logs into the school portal and reads the class list off the
// calendar.
type Client struct {
	newSession  SessionFactory
	emailDomain string
}

func NewClient(factory SessionFactory, emailDomain string) *Client {
	return &Client{newSession: factory, emailDomain: emailDomain}
}

// Classes returns the class names shown on today's calendar, in page
// order with duplicates kept. Every failure after argument validation is a
// *scraper.AutomationError; the session is closed on every path.
func (c *Client) Classes(ctx context.Context, username, password string) (classes []string, err error) {
	ctx, span := tracer.Start(ctx, "calendar:Classes")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		span.SetStatus(codes.Error, "missing credentials")
		return nil, scraper.Invalid("username and password are required")
	}
	creds := Credentials{Email: username + "@" + c.emailDomain, Password: password}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "calendar session panicked", "panic", r)
			classes, err = nil, &scraper.AutomationError{Step: stepSession, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			err = redact(err, creds.Password, creds.Email)
			span.RecordError(err)
			span.SetStatus(codes.Error, "calendar session failed")
		}
	}()

	session, err := c.newSession(ctx)
	if err != nil {
		return nil, asAutomation(stepLaunch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close calendar session", "err", cerr)
		}
	}()

	if err := session.Authenticate(ctx, creds); err != nil {
		return nil, asAutomation(stepSession, err)
	}
	classes, err = session.ExtractClasses(ctx)
	if err != nil {
		return nil, asAutomation(stepCalendar, err)
	}
	if classes == nil {
		classes = []string{}
	}

	span.SetAttributes(attribute.Int("classes", len(classes)))
	return classes, nil
}

func asAutomation(step string, err error) error {
	var ae *scraper.AutomationError
	if errors.As(err, &ae) {
		return ae
	}
	return &scraper.AutomationError{Step: step, Err: err}
}

// redact drops the underlying cause when its message would echo a secret.
func redact(err error, secrets ...string) error {
	var ae *scraper.AutomationError
	if !errors.As(err, &ae) {
		return err
	}
	msg := err.Error()
	for _, s := range secrets {
		if s != "" && strings.Contains(msg, s) {
			return &scraper.AutomationError{Step: ae.Step}
		}
	}
	return err
}
