package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/webclipper/core"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func articlePage(title string) string {
	para := strings.Repeat("This paragraph talks at length about the subject of the article so that it scores well. ", 6)
	var sb strings.Builder
	sb.WriteString("<html><head><title>" + title + "</title>")
	sb.WriteString(`<base href="https://cdn.other.example/">`)
	sb.WriteString("</head><body>")
	sb.WriteString(`<nav><a href="/home">Home</a> <a href="/about">About</a></nav>`)
	sb.WriteString("<article><h1>" + title + "</h1>")
	for i := 0; i < 5; i++ {
		sb.WriteString("<p>" + para + "</p>")
	}
	sb.WriteString(`<p>See <a href="b">the next page</a> and <a href="/docs/c?x=1">the docs</a>. ` + para + `</p>`)
	sb.WriteString(`<p><img src="img/figure.png" alt="figure"> ` + para + `</p>`)
	sb.WriteString(`<p>Mail <a href="mailto:me@example.com">me</a>. ` + para + `</p>`)
	sb.WriteString("</article><footer>footer text</footer></body></html>")
	return sb.String()
}

func TestExtract_ResolvesRelativeLinksAgainstSource(t *testing.T) {
	src := mustParse(t, "https://example.com/posts/a")

	article, err := New().Extract(articlePage("Example"), src)
	require.NoError(t, err)

	assert.Contains(t, article.ContentHTML, `https://example.com/posts/b`)
	assert.Contains(t, article.ContentHTML, `https://example.com/docs/c?x=1`)
	assert.Contains(t, article.ContentHTML, `https://example.com/posts/img/figure.png`)
	assert.Contains(t, article.ContentHTML, `mailto:me@example.com`)
	assert.NotContains(t, article.ContentHTML, "cdn.other.example")
}

func TestExtract_Title(t *testing.T) {
	article, err := New().Extract(articlePage("Example"), mustParse(t, "https://example.com/a"))
	require.NoError(t, err)
	assert.Equal(t, "Example", article.Title)
}

func TestExtract_NoReadableContent(t *testing.T) {
	_, err := New().Extract("<html><head></head><body></body></html>", mustParse(t, "https://example.com/a"))
	require.Error(t, err)

	var eerr *core.ExtractionError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "https://example.com/a", eerr.URL)
}

func TestExtract_MissingSourceURL(t *testing.T) {
	_, err := New().Extract(articlePage("Example"), nil)
	assert.True(t, core.IsExtraction(err))
}

func TestInjectBase_ReplacesExistingBase(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><head><base href="https://elsewhere.example/"><title>x</title></head><body></body></html>`))
	require.NoError(t, err)

	base := InjectBase(doc, mustParse(t, "https://example.com/a?b=1&c=2"))

	assert.Equal(t, "https://example.com/a?b=1&c=2", base.String())
	assert.Equal(t, 1, doc.Find("base").Length())
	href, _ := doc.Find("head base").Attr("href")
	assert.Equal(t, "https://example.com/a?b=1&c=2", href)
}

func TestResolveURL(t *testing.T) {
	base := mustParse(t, "https://example.com/dir/page")

	tests := []struct {
		href string
		want string
	}{
		{"other", "https://example.com/dir/other"},
		{"/root", "https://example.com/root"},
		{"../up", "https://example.com/up"},
		{"//cdn.example.com/x.js", "https://cdn.example.com/x.js"},
		{"https://abs.example.com/", ""},
		{"#section", ""},
		{"javascript:void(0)", ""},
		{"tel:123", ""},
		{"data:image/png;base64,AAAA", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveURL(tt.href, base), tt.href)
	}
}
