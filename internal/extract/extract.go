// Package extract applies declarative field specs to HTML documents.
//
// A Spec names a repeating root element and the fields to read relative to
// each root match. Optional fields that are not found come back as nil;
// a root match missing a required field is skipped entirely.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Field struct {
	Name     string
	Selector string // relative to the root match; empty means the root itself
	Attr     string // read an attribute instead of the text content
	Required bool
	Last     bool // take the last match instead of the first
}

type Spec struct {
	Root   string
	Fields []Field
}

// Record holds one value per field name. A nil value means the field was
// not found, which is distinct from a field that was found but empty.
type Record map[string]*string

// Get returns the value of name, or nil.
func (r Record) Get(name string) *string {
	return r[name]
}

func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// Apply runs spec against every match of spec.Root under sel, in document
// order.
func Apply(sel *goquery.Selection, spec Spec) []Record {
	var records []Record
	sel.Find(spec.Root).Each(func(_ int, root *goquery.Selection) {
		if record, ok := ApplyOne(root, spec.Fields); ok {
			records = append(records, record)
		}
	})
	return records
}

// ApplyOne reads fields relative to a single element. ok is false when a
// required field is missing.
func ApplyOne(root *goquery.Selection, fields []Field) (Record, bool) {
	record := make(Record, len(fields))
	for _, f := range fields {
		value := lookup(root, f)
		if value == nil && f.Required {
			return nil, false
		}
		record[f.Name] = value
	}
	return record, true
}

func lookup(root *goquery.Selection, f Field) *string {
	match := root
	if f.Selector != "" {
		match = root.Find(f.Selector)
	}
	if match.Length() == 0 {
		return nil
	}
	if f.Last {
		match = match.Last()
	} else {
		match = match.First()
	}

	if f.Attr != "" {
		value, ok := match.Attr(f.Attr)
		if !ok {
			return nil
		}
		value = Normalize(value)
		return &value
	}
	value := Normalize(match.Text())
	return &value
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// Normalize trims the string and collapses runs of whitespace.
func Normalize(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Deref returns *s, or fallback when s is nil.
func Deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
