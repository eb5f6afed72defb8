package htmlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractHrefs(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name: "Anchors in document order",
			html: `<html><body>
				<a href="https://paypa1.com/login">Log in</a>
				<div><a href="/help">Help</a></div>
				<a href="#top">Top</a>
			</body></html>`,
			expected: []string{"https://paypa1.com/login", "/help", "#top"},
		},
		{
			name:     "Anchor without href is ignored",
			html:     `<a name="anchor">x</a><a href="mailto:a@b.com">mail</a>`,
			expected: []string{"mailto:a@b.com"},
		},
		{
			name:     "Non-anchor links are ignored",
			html:     `<link rel="stylesheet" href="/style.css"><area href="/map">`,
			expected: []string{},
		},
		{
			name:     "Entities decoded",
			html:     `<a href="/search?q=1&amp;lang=en">s</a>`,
			expected: []string{"/search?q=1&lang=en"},
		},
		{
			name:     "Unclosed list items still yield links",
			html:     `<ul><li><a href="https://example.com/a">one</a><li><a href='//cdn.example.com'>two</ul>`,
			expected: []string{"https://example.com/a", "//cdn.example.com"},
		},
		{
			name: "Nested siblings keep document order",
			html: `<nav><a href="/1">1</a><div><a href="/2">2</a><span><a href="/3">3</a></span></div><a href="/4">4</a></nav>
				<footer><a href="/5">5</a></footer>`,
			expected: []string{"/1", "/2", "/3", "/4", "/5"},
		},
		{
			name:     "Empty href is kept verbatim",
			html:     `<a href="">self</a>`,
			expected: []string{""},
		},
		{
			name:     "Empty document",
			html:     "",
			expected: []string{},
		},
	}

	extractor := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hrefs, err := extractor.ExtractHrefs(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hrefs)
		})
	}
}
