package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fetchbot/internal/httpclient"
	"fetchbot/internal/scraper"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastPage = `<html><body>
<div class="forecast"><em class="min">10</em><em class="max">20</em><p>Sunny.</p></div>
<div class="forecast"><em class="max">22</em><p>Cloudy.</p></div>
<div class="forecast"><em class="min">12</em></div>
</body></html>`

const frontPage = `<html><body>
<a title="Sydney forecast"><span class="val">17</span><span class="max">25</span></a>
<a title="Melbourne forecast"><span class="val">15</span><span class="max">19</span><span class="max">21</span></a>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(httpclient.New(httpclient.Options{Source: "bom", BaseURL: server.URL, Timeout: time.Second}))
}

func ptr(s string) *string { return &s }

func TestForecastParsesPanelsInOrder(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(forecastPage))
	})

	days, err := c.Forecast(context.Background(), "Melbourne", "VIC", false)
	require.NoError(t, err)

	assert.Equal(t, "/vic/forecasts/melbourne.shtml", path)
	require.Len(t, days, 3)
	assert.Equal(t, ForecastDay{Low: ptr("10"), High: ptr("20"), Summary: ptr("Sunny.")}, days[0])
	assert.Nil(t, days[1].Low)
	assert.Equal(t, "22", *days[1].High)
	assert.Nil(t, days[2].High)
	assert.Nil(t, days[2].Summary)
}

func TestForecastOverlayReplacesTodayOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(frontPage))
			return
		}
		w.Write([]byte(forecastPage))
	})

	days, err := c.Forecast(context.Background(), "melbourne", "vic", true)
	require.NoError(t, err)

	// the last span.max wins; later days are untouched
	expected := []ForecastDay{
		{Low: ptr("15"), High: ptr("21"), Summary: ptr("Sunny.")},
		{High: ptr("22"), Summary: ptr("Cloudy.")},
		{Low: ptr("12")},
	}
	if diff := cmp.Diff(expected, days); diff != "" {
		t.Fatal(diff)
	}
}

func TestForecastOverlayFailureKeepsValues(t *testing.T) {
	tests := []struct {
		name  string
		front http.HandlerFunc
	}{
		{"front page error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"no matching anchor", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<a title="Hobart forecast"><span class="val">3</span></a>`))
		}},
		{"case differs from capitalized name", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<a title="MELBOURNE forecast"><span class="val">3</span></a>`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/" {
					tt.front(w, r)
					return
				}
				w.Write([]byte(forecastPage))
			})

			days, err := c.Forecast(context.Background(), "melbourne", "vic", true)
			require.NoError(t, err)
			require.Len(t, days, 3)
			assert.Equal(t, "10", *days[0].Low)
			assert.Equal(t, "20", *days[0].High)
		})
	}
}

func TestForecastOverlayAnchorWithoutSpansKeepsValues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<a title="Melbourne forecast">no data</a>`))
			return
		}
		w.Write([]byte(forecastPage))
	})

	days, err := c.Forecast(context.Background(), "melbourne", "vic", true)
	require.NoError(t, err)
	assert.Equal(t, "10", *days[0].Low)
	assert.Equal(t, "20", *days[0].High)
}

func TestForecastNoPanelsSkipsOverlay(t *testing.T) {
	var frontHits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			frontHits.Add(1)
			w.Write([]byte(frontPage))
			return
		}
		w.Write([]byte(`<html><body>nothing here</body></html>`))
	})

	days, err := c.Forecast(context.Background(), "melbourne", "vic", true)
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.Zero(t, frontHits.Load())
}

func TestForecastPrimaryFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	days, err := c.Forecast(context.Background(), "atlantis", "vic", true)
	require.Error(t, err)
	assert.Nil(t, days)
	assert.ErrorIs(t, err, scraper.ErrTransport)
}

func TestForecastInvalidArgs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Forecast(context.Background(), "  ", "vic", false)
	assert.ErrorIs(t, err, scraper.ErrInvalidArgument)
	_, err = c.Forecast(context.Background(), "melbourne", "", false)
	assert.ErrorIs(t, err, scraper.ErrInvalidArgument)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Melbourne", capitalize("mELBOURNE"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Élan", capitalize("éLAN"))
}

func TestWeatherScraper(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(forecastPage))
	})
	s := NewWeatherScraper(c, false)

	_, err := s.Scrape(context.Background(), []string{"melbourne"}, scraper.Options{})
	assert.ErrorIs(t, err, scraper.ErrInvalidArgument)

	content, err := s.Scrape(context.Background(), []string{"melbourne", "vic"}, scraper.Options{Timeout: time.Second})
	require.NoError(t, err)
	wc, ok := content.(*WeatherContent)
	require.True(t, ok)
	assert.Len(t, wc.Days(), 3)
}
