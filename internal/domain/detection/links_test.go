package detection

import (
	"testing"

	"github.com/stoik/phishguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLinks(t *testing.T) {
	tests := []struct {
		name     string
		raw      []string
		base     string
		expected []string
	}{
		{
			name:     "Root-relative path",
			raw:      []string{"/path"},
			base:     "https://site.com/x/",
			expected: []string{"https://site.com/path"},
		},
		{
			name:     "Document-relative path",
			raw:      []string{"login.html"},
			base:     "https://site.com/x/",
			expected: []string{"https://site.com/x/login.html"},
		},
		{
			name:     "Protocol-relative link",
			raw:      []string{"//cdn.paypa1.com/a.js"},
			base:     "https://site.com/",
			expected: []string{"https://cdn.paypa1.com/a.js"},
		},
		{
			name:     "Absolute link passes through",
			raw:      []string{"http://paypal.com/signin?next=%2F"},
			base:     "https://site.com/",
			expected: []string{"http://paypal.com/signin?next=%2F"},
		},
		{
			name: "Non-navigable schemes dropped",
			raw: []string{
				"#section", "mailto:a@b.com", "javascript:void(0)", "tel:123",
				"JavaScript:alert(1)", "", "   ",
			},
			base:     "https://site.com/",
			expected: []string{},
		},
		{
			name:     "Other schemes dropped after resolution",
			raw:      []string{"ftp://files.site.com/a", "data:text/plain,hi", "/ok"},
			base:     "https://site.com/",
			expected: []string{"https://site.com/ok"},
		},
		{
			name:     "Duplicates collapse",
			raw:      []string{"/a", "https://site.com/a", " /a "},
			base:     "https://site.com/",
			expected: []string{"https://site.com/a"},
		},
		{
			name:     "Empty input",
			raw:      nil,
			base:     "https://site.com/",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, diagnostics, err := NormalizeLinks(tt.raw, tt.base)
			require.NoError(t, err)
			assert.Empty(t, diagnostics)
			assert.Equal(t, tt.expected, links)
		})
	}
}

func TestNormalizeLinks_UnparseableLinkIsContained(t *testing.T) {
	links, diagnostics, err := NormalizeLinks([]string{"http://[::1", "/fine"}, "https://site.com/")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://site.com/fine"}, links)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, domain.DiagnosticParseFailure, diagnostics[0].Kind)
	assert.Equal(t, "http://[::1", diagnostics[0].Subject)
}

func TestNormalizeLinks_BadBase(t *testing.T) {
	_, _, err := NormalizeLinks([]string{"/a"}, "")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, _, err = NormalizeLinks([]string{"/a"}, "site.com/x")
	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNormalizeLinks_NeverReturnsNonNavigable(t *testing.T) {
	raw := []string{"#top", "mailto:x@y.z", "tel:+1", "javascript:;", "/a", "b", "//c.com"}
	links, _, err := NormalizeLinks(raw, "https://site.com/dir/")
	require.NoError(t, err)

	for _, link := range links {
		assert.False(t, isNonNavigable(link), link)
	}
}
