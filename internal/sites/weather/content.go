package weather

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"fetchbot/internal/extract"
	"fetchbot/internal/render"

	"github.com/jedib0t/go-pretty/v6/table"
)

const missing = "N/A"

// WeatherContent holds a scraped forecast and implements scraper.Content.
type WeatherContent struct {
	locality string
	region   string
	days     []ForecastDay
}

func NewWeatherContent(locality, region string, days []ForecastDay) *WeatherContent {
	return &WeatherContent{locality: capitalize(locality), region: strings.ToUpper(region), days: days}
}

func (c *WeatherContent) Days() []ForecastDay { return c.days }

func dayLabel(i int) string {
	if i == 0 {
		return "Today"
	}
	return fmt.Sprintf("Day %d", i+1)
}

// headline is the one-line answer for today, the way the bot replies.
func (c *WeatherContent) headline() (string, string) {
	if len(c.days) == 0 {
		return fmt.Sprintf("No forecast found for %s, %s.", c.locality, c.region), ""
	}
	today := c.days[0]
	return fmt.Sprintf("Today in %s — min: %s, max: %s",
			c.locality, extract.Deref(today.Low, missing), extract.Deref(today.High, missing)),
		extract.Deref(today.Summary, missing)
}

func (c *WeatherContent) ToText() (string, error) {
	line, summary := c.headline()
	var sb strings.Builder
	sb.WriteString(line + "\n")
	if summary != "" {
		sb.WriteString(summary + "\n")
	}
	if len(c.days) == 0 {
		return sb.String(), nil
	}

	t := render.NewTable()
	t.AppendHeader(table.Row{"Day", "Min", "Max", "Summary"})
	for i, d := range c.days {
		t.AppendRow(table.Row{
			dayLabel(i),
			extract.Deref(d.Low, missing),
			extract.Deref(d.High, missing),
			extract.Deref(d.Summary, missing),
		})
	}
	sb.WriteString("\n" + t.Render() + "\n")
	return sb.String(), nil
}

func (c *WeatherContent) ToHTML() (string, error) {
	line, summary := c.headline()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(line)))
	if summary != "" {
		sb.WriteString(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(summary)))
	}
	if len(c.days) == 0 {
		return sb.String(), nil
	}
	sb.WriteString("<table>\n<thead><tr><th>Day</th><th>Min</th><th>Max</th><th>Summary</th></tr></thead>\n<tbody>\n")
	for i, d := range c.days {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			dayLabel(i),
			html.EscapeString(extract.Deref(d.Low, missing)),
			html.EscapeString(extract.Deref(d.High, missing)),
			html.EscapeString(extract.Deref(d.Summary, missing)),
		))
	}
	sb.WriteString("</tbody>\n</table>\n")
	return sb.String(), nil
}

func (c *WeatherContent) ToMarkdown() (string, error) {
	h, err := c.ToHTML()
	if err != nil {
		return "", err
	}
	return render.Markdown(h)
}

func (c *WeatherContent) ToJSON() ([]byte, error) {
	type jsonResult struct {
		Locality string        `json:"locality"`
		Region   string        `json:"region"`
		Days     []ForecastDay `json:"days"`
	}
	days := c.days
	if days == nil {
		days = []ForecastDay{}
	}
	return json.Marshal(jsonResult{Locality: c.locality, Region: c.region, Days: days})
}

func (c *WeatherContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Day", "Min", "Max", "Summary"})
	for i, d := range c.days {
		_ = w.Write([]string{
			dayLabel(i),
			extract.Deref(d.Low, ""),
			extract.Deref(d.High, ""),
			extract.Deref(d.Summary, ""),
		})
	}
	w.Flush()
	return buf.String(), nil
}
