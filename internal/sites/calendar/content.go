package calendar

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"fetchbot/internal/render"
)

// ClassesContent holds the class list of one login.
type ClassesContent struct {
	classes []string
}

func NewClassesContent(classes []string) *ClassesContent {
	return &ClassesContent{classes: classes}
}

func (c *ClassesContent) Classes() []string { return c.classes }

func (c *ClassesContent) ToText() (string, error) {
	if len(c.classes) == 0 {
		return "No classes found.\n", nil
	}
	var sb strings.Builder
	sb.WriteString("Your classes:\n")
	for _, name := range c.classes {
		sb.WriteString("- " + name + "\n")
	}
	return sb.String(), nil
}

func (c *ClassesContent) ToHTML() (string, error) {
	if len(c.classes) == 0 {
		return "<p>No classes found.</p>\n", nil
	}
	var sb strings.Builder
	sb.WriteString("<h1>Your classes</h1>\n<ul>\n")
	for _, name := range c.classes {
		sb.WriteString(fmt.Sprintf("<li>%s</li>\n", html.EscapeString(name)))
	}
	sb.WriteString("</ul>\n")
	return sb.String(), nil
}

func (c *ClassesContent) ToMarkdown() (string, error) {
	h, err := c.ToHTML()
	if err != nil {
		return "", err
	}
	return render.Markdown(h)
}

func (c *ClassesContent) ToJSON() ([]byte, error) {
	classes := c.classes
	if classes == nil {
		classes = []string{}
	}
	return json.Marshal(struct {
		Classes []string `json:"classes"`
	}{classes})
}

func (c *ClassesContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Position", "Class"})
	for i, name := range c.classes {
		_ = w.Write([]string{fmt.Sprint(i + 1), name})
	}
	w.Flush()
	return buf.String(), nil
}
