package htmlparse

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/stoik/phishguard/internal/domain"
	"golang.org/x/net/html"
)

// Extractor implements ports.LinkExtractor over the parsed HTML5 tree
type Extractor struct{}

// NewExtractor creates a new href extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractHrefs returns the href of every anchor in htmlBody in document order.
// Values are returned verbatim; filtering and resolution happen downstream.
//
// Misnested anchors are repaired the way browsers do, which can clone an
// anchor; the clone is reported like any other anchor.
func (e *Extractor) ExtractHrefs(htmlBody string) ([]string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(htmlBody))
	if err != nil {
		return nil, &domain.ParseError{Input: "html document", Err: fmt.Errorf("parse html: %w", err)}
	}

	hrefs := make([]string, 0)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasAttr(n, "href") {
			hrefs = append(hrefs, htmlquery.SelectAttr(n, "href"))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hrefs, nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return true
		}
	}
	return false
}
