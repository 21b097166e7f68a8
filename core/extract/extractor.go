// Package extract implements the Extractor interface.
// It isolates the main article of a page by:
//  1. Declaring the source URL as the document base (<base href>)
//  2. Resolving relative link and asset targets against that base
//  3. Running the readability algorithm on the prepared document
//
// Steps 1 and 2 must happen before extraction because readability reads
// link targets while scoring candidate nodes.
package extract

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/gaurav-prasanna/webclipper/core"
)

// urlAttributes are the attributes rewritten to absolute URLs before extraction.
var urlAttributes = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"img[src]", "src"},
	{"source[src]", "src"},
	{"video[poster]", "poster"},
	{"audio[src]", "src"},
	{"iframe[src]", "src"},
}

// ReadabilityExtractor extracts articles with go-readability.
type ReadabilityExtractor struct{}

// New creates a ReadabilityExtractor.
func New() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

// Extract parses raw HTML and returns the page's primary readable content.
func (e *ReadabilityExtractor) Extract(rawHTML string, sourceURL *url.URL) (*core.Article, error) {
	if sourceURL == nil {
		return nil, &core.ExtractionError{Err: fmt.Errorf("missing source URL")}
	}
	src := sourceURL.String()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &core.ExtractionError{URL: src, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	base := InjectBase(doc, sourceURL)
	resolveRelative(doc, base)

	article, err := readability.FromDocument(doc.Nodes[0], base)
	if err != nil {
		return nil, &core.ExtractionError{URL: src, Err: err}
	}
	if strings.TrimSpace(article.TextContent) == "" || strings.TrimSpace(article.Content) == "" {
		return nil, &core.ExtractionError{URL: src, Err: core.ErrNoContent}
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = sourceURL.Host
	}

	return &core.Article{
		Title:       title,
		ContentHTML: article.Content,
		Byline:      article.Byline,
		SiteName:    article.SiteName,
		Excerpt:     article.Excerpt,
	}, nil
}

// InjectBase replaces any <base> in doc with one pointing at sourceURL and
// returns the base URL the document now declares.
func InjectBase(doc *goquery.Document, sourceURL *url.URL) *url.URL {
	doc.Find("base").Remove()

	head := doc.Find("head").First()
	if head.Length() == 0 {
		// html.Parse always synthesizes <head>; a fragment parsed elsewhere might not.
		doc.Find("html").First().PrependHtml("<head></head>")
		head = doc.Find("head").First()
	}
	head.PrependHtml(fmt.Sprintf(`<base href="%s">`, html.EscapeString(sourceURL.String())))

	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return sourceURL
	}
	declared, err := url.Parse(href)
	if err != nil {
		return sourceURL
	}
	return sourceURL.ResolveReference(declared)
}

// resolveRelative rewrites relative URL attributes against base.
func resolveRelative(doc *goquery.Document, base *url.URL) {
	for _, ua := range urlAttributes {
		doc.Find(ua.selector).Each(func(_ int, s *goquery.Selection) {
			val, _ := s.Attr(ua.attr)
			if resolved := resolveURL(val, base); resolved != "" {
				s.SetAttr(ua.attr, resolved)
			}
		})
	}
}

// resolveURL resolves a potentially relative URL against a base.
// It returns "" for values that should be left untouched.
func resolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	// Skip in-page anchors and non-navigational schemes.
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil || parsed.IsAbs() {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
