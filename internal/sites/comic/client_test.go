package comic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fetchbot/internal/httpclient"
	"fetchbot/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	mu       sync.Mutex
	latest   int
	paths    []string
	failPath string
}

func (c *catalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, r.URL.Path)

	if r.URL.Path == c.failPath {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if r.URL.Path == "/info.0.json" {
		fmt.Fprintf(w, `{"num": %d, "title": "Latest", "img": "https://imgs.xkcd.com/latest.png", "alt": "newest"}`, c.latest)
		return
	}
	var n int
	if _, err := fmt.Sscanf(r.URL.Path, "/%d/info.0.json", &n); err != nil {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, `{"num": %d, "title": "Comic %d", "img": "https://imgs.xkcd.com/%d.png", "alt": "alt %d"}`, n, n, n, n)
}

func (c *catalog) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func (c *catalog) SetLatest(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = n
}

func newTestClient(t *testing.T, cat *catalog) (*Client, string) {
	t.Helper()
	server := httptest.NewServer(cat)
	t.Cleanup(server.Close)
	c := NewClient(httpclient.New(httpclient.Options{Source: "xkcd", BaseURL: server.URL, Timeout: time.Second}))
	return c, server.URL
}

func TestRandomFetchesIssueWithinRange(t *testing.T) {
	cat := &catalog{latest: 3000}
	c, base := newTestClient(t, cat)
	c = c.WithRand(rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 20; i++ {
		comic, err := c.Random(context.Background())
		require.NoError(t, err)
		require.NotNil(t, comic)
		assert.GreaterOrEqual(t, comic.Num, 1)
		assert.LessOrEqual(t, comic.Num, 3000)
		assert.Equal(t, fmt.Sprintf("Comic %d", comic.Num), comic.Title)
		assert.Equal(t, fmt.Sprintf("%s/%d/", base, comic.Num), comic.Link)
	}
}

func TestRandomSingleIssue(t *testing.T) {
	cat := &catalog{latest: 1}
	c, _ := newTestClient(t, cat)

	comic, err := c.Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, comic.Num)
	assert.Equal(t, []string{"/info.0.json", "/1/info.0.json"}, cat.Paths())
}

func TestRandomEmptyCatalog(t *testing.T) {
	cat := &catalog{latest: 0}
	c, _ := newTestClient(t, cat)

	comic, err := c.Random(context.Background())
	require.NoError(t, err)
	assert.Nil(t, comic)
	assert.Equal(t, []string{"/info.0.json"}, cat.Paths())
}

func TestRandomErrors(t *testing.T) {
	tests := []struct {
		name     string
		failPath string
	}{
		{"latest fails", "/info.0.json"},
		{"chosen issue fails", "/1/info.0.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &catalog{latest: 1, failPath: tt.failPath}
			c, _ := newTestClient(t, cat)

			comic, err := c.Random(context.Background())
			require.Error(t, err)
			assert.Nil(t, comic)
			assert.ErrorIs(t, err, scraper.ErrTransport)
		})
	}
}

func TestComicJSONRoundTrip(t *testing.T) {
	in := Comic{Num: 353, Title: "Python", Img: "https://imgs.xkcd.com/comics/python.png", Alt: "I wrote 20 short programs", Link: "https://xkcd.com/353/"}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	var out Comic
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestComicScraper(t *testing.T) {
	cat := &catalog{latest: 0}
	c, _ := newTestClient(t, cat)
	s := NewComicScraper(c)

	_, err := s.Scrape(context.Background(), []string{"extra"}, scraper.Options{})
	assert.ErrorIs(t, err, scraper.ErrInvalidArgument)

	_, err = s.Scrape(context.Background(), nil, scraper.Options{})
	assert.True(t, errors.Is(err, scraper.ErrNoResult))

	cat.SetLatest(5)
	content, err := s.Scrape(context.Background(), nil, scraper.Options{Timeout: time.Second})
	require.NoError(t, err)
	assert.NotZero(t, content.(*ComicContent).Comic().Num)
}
