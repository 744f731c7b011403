package feed

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"fetchbot/internal/render"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FeedContent holds the posts fetched from one community.
type FeedContent struct {
	community string
	posts     []Post
}

func NewFeedContent(community string, posts []Post) *FeedContent {
	return &FeedContent{community: community, posts: posts}
}

func (c *FeedContent) Posts() []Post { return c.posts }

func (c *FeedContent) empty() string {
	return fmt.Sprintf("No posts found for r/%s.", c.community)
}

func (c *FeedContent) ToText() (string, error) {
	if len(c.posts) == 0 {
		return c.empty() + "\n", nil
	}
	t := render.NewTable()
	t.SetTitle("r/" + c.community)
	t.AppendHeader(table.Row{"#", "Title", "URL"})
	for i, p := range c.posts {
		t.AppendRow(table.Row{i + 1, render.Fit(p.Title, render.CellWidth), p.URL})
	}
	return t.Render() + "\n", nil
}

func (c *FeedContent) ToHTML() (string, error) {
	if len(c.posts) == 0 {
		return fmt.Sprintf("<p>%s</p>\n", html.EscapeString(c.empty())), nil
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>r/%s</h1>\n", html.EscapeString(c.community)))
	for _, p := range c.posts {
		title := html.EscapeString(render.Truncate(p.Title, render.TitleLimit))
		link := html.EscapeString(p.URL)
		sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n<p><a href=\"%s\">%s</a></p>\n<img src=\"%s\" alt=\"%s\">\n", title, link, link, link, title))
	}
	return sb.String(), nil
}

func (c *FeedContent) ToMarkdown() (string, error) {
	h, err := c.ToHTML()
	if err != nil {
		return "", err
	}
	return render.Markdown(h)
}

func (c *FeedContent) ToJSON() ([]byte, error) {
	posts := c.posts
	if posts == nil {
		posts = []Post{}
	}
	return json.Marshal(struct {
		Community string `json:"community"`
		Posts     []Post `json:"posts"`
	}{c.community, posts})
}

func (c *FeedContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Rank", "Title", "URL"})
	for i, p := range c.posts {
		_ = w.Write([]string{fmt.Sprint(i + 1), p.Title, p.URL})
	}
	w.Flush()
	return buf.String(), nil
}
