package ports

import "context"

// PageFetcher retrieves the HTML body of a page.
// Implementations return a *domain.FetchError on any transport or status failure.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// LinkExtractor pulls the raw href values out of an HTML document, in
// document order and without any normalization
type LinkExtractor interface {
	ExtractHrefs(htmlBody string) ([]string, error)
}
