// Package render holds the text helpers shared by every site's Content.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

const (
	// TitleLimit and DescriptionLimit are the character limits chat clients
	// put on embed titles and descriptions.
	TitleLimit       = 256
	DescriptionLimit = 2048

	// CellWidth bounds free-text table cells in terminal output.
	CellWidth = 72
)

// Markdown converts an HTML rendering to Markdown, tables included.
func Markdown(htmlContent string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	markdown, err := converter.ConvertString(htmlContent)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return strings.TrimSpace(markdown) + "\n", nil
}

// NewTable returns a table writer in the style used for terminal output.
func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// Truncate keeps the first n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Fit shortens s to at most width display columns, ending in "…" when it
// had to cut. Wide runes count as two columns.
func Fit(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
