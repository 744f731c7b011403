package formatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubContent struct{ err error }

func (s stubContent) ToHTML() (string, error)     { return "<p>html</p>", s.err }
func (s stubContent) ToText() (string, error)     { return "text", s.err }
func (s stubContent) ToMarkdown() (string, error) { return "markdown", s.err }
func (s stubContent) ToJSON() ([]byte, error)     { return []byte(`{"k":"v"}`), s.err }
func (s stubContent) ToCSV() (string, error)      { return "a,b\n", s.err }

func TestFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"html", "<p>html</p>"},
		{"text", "text"},
		{"markdown", "markdown"},
		{"json", `{"k":"v"}`},
		{"csv", "a,b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Format(stubContent{}, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, Valid(tt.format))
		})
	}
}

func TestFormatErrors(t *testing.T) {
	_, err := Format(stubContent{}, "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Valid("xml"))

	boom := errors.New("boom")
	_, err = Format(stubContent{err: boom}, "json")
	assert.ErrorIs(t, err, boom)
}

func TestInferFromExtension(t *testing.T) {
	assert.Equal(t, "markdown", InferFromExtension("out.MD"))
	assert.Equal(t, "json", InferFromExtension("/tmp/weather.json"))
	assert.Equal(t, "html", InferFromExtension("page.htm"))
	assert.Equal(t, "csv", InferFromExtension("report.csv"))
	assert.Equal(t, "text", InferFromExtension("notes.txt"))
	assert.Equal(t, "", InferFromExtension("binary.bin"))
	assert.Equal(t, "", InferFromExtension("noext"))
}
