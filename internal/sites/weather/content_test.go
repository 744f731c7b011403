package weather

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContent() *WeatherContent {
	return NewWeatherContent("melbourne", "vic", []ForecastDay{
		{Low: ptr("10"), High: ptr("20"), Summary: ptr("Sunny.")},
		{High: ptr("22"), Summary: ptr("Cloudy.")},
	})
}

func TestWeatherContentText(t *testing.T) {
	out, err := sampleContent().ToText()
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Today in Melbourne — min: 10, max: 20", lines[0])
	assert.Equal(t, "Sunny.", lines[1])
	assert.Contains(t, out, "Day 2")
	assert.Contains(t, out, "N/A")
}

func TestWeatherContentEmpty(t *testing.T) {
	c := NewWeatherContent("atlantis", "vic", nil)

	out, err := c.ToText()
	require.NoError(t, err)
	assert.Equal(t, "No forecast found for Atlantis, VIC.\n", out)

	data, err := c.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"locality":"Atlantis","region":"VIC","days":[]}`, string(data))
}

func TestWeatherContentJSONKeepsNulls(t *testing.T) {
	data, err := sampleContent().ToJSON()
	require.NoError(t, err)

	var got struct {
		Days []map[string]*string `json:"days"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Days, 2)
	assert.Contains(t, got.Days[1], "low")
	assert.Nil(t, got.Days[1]["low"])
}

func TestWeatherContentHTMLAndMarkdown(t *testing.T) {
	c := NewWeatherContent("melbourne", "vic", []ForecastDay{{Summary: ptr("<b>hot</b>")}})

	h, err := c.ToHTML()
	require.NoError(t, err)
	assert.Contains(t, h, "&lt;b&gt;hot&lt;/b&gt;")

	m, err := c.ToMarkdown()
	require.NoError(t, err)
	assert.Contains(t, m, "Today in Melbourne")
	assert.Contains(t, m, "| Today")
}

func TestWeatherContentCSV(t *testing.T) {
	out, err := sampleContent().ToCSV()
	require.NoError(t, err)
	assert.Equal(t, "Day,Min,Max,Summary\nToday,10,20,Sunny.\nDay 2,,22,Cloudy.\n", out)
}
