package httpclient

import (
	"context"
	"time"

	"fetchbot/internal/scraper"
	"fetchbot/internal/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

type Options struct {
	Source    string // source name used in errors and span names
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	ProxyURL  string
	// CloudflareBypass wraps the transport so the TLS and header fingerprint
	// look like a desktop browser.
	CloudflareBypass bool
}

// Client is a resty client bound to one external source. Request deadlines
// come from the ctx built in Get, so WithTimeout can raise or lower them.
type Client struct {
	source  string
	http    *resty.Client
	timeout time.Duration
}

func New(opts Options) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	telemetry.InstrumentResty(client, "fetchbot/http/"+opts.Source)

	return &Client{source: opts.Source, http: client, timeout: opts.Timeout}
}

// WithTimeout returns a copy whose requests are each bounded by d. A
// non-positive d returns c unchanged.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d <= 0 {
		return c
	}
	clone := *c
	clone.timeout = d
	return &clone
}

// Get fetches path relative to the base URL and returns the body of a 2xx
// response. Any other outcome is a *scraper.TransportError.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, &scraper.TransportError{Source: c.source, URL: path, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &scraper.TransportError{Source: c.source, URL: res.Request.URL, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}
