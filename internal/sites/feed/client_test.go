package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fetchbot/internal/httpclient"
	"fetchbot/internal/scraper"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingJSON(n int) string {
	children := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		children = append(children, fmt.Sprintf(`{"data":{"title":"post %d","url":"https://example.com/%d"}}`, i, i))
	}
	return `{"data":{"children":[` + strings.Join(children, ",") + `]}}`
}

func newTestClient(t *testing.T, hits *atomic.Int32, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewClient(httpclient.New(httpclient.Options{Source: "reddit", BaseURL: server.URL, UserAgent: "fetchbot-test", Timeout: time.Second}))
}

func TestTopTakesFirstLimitInOrder(t *testing.T) {
	var hits atomic.Int32
	var path string
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(listingJSON(10)))
	})

	posts, err := c.Top(context.Background(), "golang", 3)
	require.NoError(t, err)

	assert.Equal(t, "/r/golang.json", path)
	assert.Equal(t, []Post{
		{Title: "post 1", URL: "https://example.com/1"},
		{Title: "post 2", URL: "https://example.com/2"},
		{Title: "post 3", URL: "https://example.com/3"},
	}, posts)
}

func TestTopPrefersOverriddenURLAndSkipsMissing(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"children":[
			{"data":{"title":"a","url":"https://reddit.com/a","url_overridden_by_dest":"https://i.redd.it/a.png"}},
			{"data":{"title":"b"}},
			{"data":{"title":"c","url":"https://reddit.com/c"}},
			{"data":{"title":"d","url":"https://reddit.com/d"}}
		]}}`))
	})

	posts, err := c.Top(context.Background(), "memes", 3)
	require.NoError(t, err)

	// b is dropped after slicing, so only two of the first three remain
	diff := cmp.Diff(
		[]Post{{Title: "a", URL: "https://i.redd.it/a.png"}, {Title: "c"}},
		posts,
		cmpopts.IgnoreFields(Post{}, "URL"),
	)
	if diff != "" {
		t.Fatal(diff)
	}
	assert.Equal(t, "https://i.redd.it/a.png", posts[0].URL)
}

func TestTopLimitLargerThanListing(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingJSON(2)))
	})

	posts, err := c.Top(context.Background(), "golang", 50)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestTopZeroLimitMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingJSON(3)))
	})

	posts, err := c.Top(context.Background(), "golang", 0)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Zero(t, hits.Load())
}

func TestTopInvalidArguments(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Top(context.Background(), "golang", -1)
	assert.ErrorIs(t, err, scraper.ErrInvalidArgument)
	_, err = c.Top(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, scraper.ErrInvalidArgument)
	assert.Zero(t, hits.Load())
}

func TestTopTransportErrorNamesCommunity(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	posts, err := c.Top(context.Background(), "private_sub", 5)
	require.Error(t, err)
	assert.Nil(t, posts)
	assert.ErrorIs(t, err, scraper.ErrTransport)
	assert.Contains(t, err.Error(), "private_sub")
	assert.Contains(t, err.Error(), "403")
}

func TestTopMalformedJSON(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	})

	_, err := c.Top(context.Background(), "golang", 5)
	assert.ErrorIs(t, err, scraper.ErrTransport)
}

func TestTopEscapesCommunity(t *testing.T) {
	var hits atomic.Int32
	var path, query string
	c := newTestClient(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(listingJSON(1)))
	})

	_, err := c.Top(context.Background(), "a?x=1", 5)
	require.NoError(t, err)
	assert.Equal(t, "/r/a?x=1.json", path)
	assert.Empty(t, query)
}
