package comic

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strconv"

	"fetchbot/internal/render"
)

// ComicContent renders one comic the way the bot posts it: a titled card
// with the image and the alt text.
type ComicContent struct {
	comic Comic
}

func NewComicContent(c Comic) *ComicContent {
	return &ComicContent{comic: c}
}

func (c *ComicContent) Comic() Comic { return c.comic }

func (c *ComicContent) title() string {
	return render.Truncate(fmt.Sprintf("%d: %s", c.comic.Num, c.comic.Title), render.TitleLimit)
}

func (c *ComicContent) alt() string {
	return render.Truncate(c.comic.Alt, render.DescriptionLimit)
}

func (c *ComicContent) ToText() (string, error) {
	return fmt.Sprintf("%s\n%s\n%s\n%s\n", c.title(), c.comic.Link, c.comic.Img, c.alt()), nil
}

func (c *ComicContent) ToHTML() (string, error) {
	return fmt.Sprintf("<h1><a href=\"%s\">%s</a></h1>\n<p><img src=\"%s\" alt=\"%s\"></p>\n<p>%s</p>\n",
		html.EscapeString(c.comic.Link),
		html.EscapeString(c.title()),
		html.EscapeString(c.comic.Img),
		html.EscapeString(c.comic.Title),
		html.EscapeString(c.alt()),
	), nil
}

func (c *ComicContent) ToMarkdown() (string, error) {
	h, err := c.ToHTML()
	if err != nil {
		return "", err
	}
	return render.Markdown(h)
}

func (c *ComicContent) ToJSON() ([]byte, error) {
	return json.Marshal(c.comic)
}

func (c *ComicContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Num", "Title", "Img", "Alt", "Link"})
	_ = w.Write([]string{strconv.Itoa(c.comic.Num), c.comic.Title, c.comic.Img, c.comic.Alt, c.comic.Link})
	w.Flush()
	return buf.String(), nil
}
