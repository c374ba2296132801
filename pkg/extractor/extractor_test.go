package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/indexsmith/pkg/utils"
)

const countryPage = `<!DOCTYPE html>
<html>
<head>
	<title>Example web scraping website</title>
	<meta name="description" content="Kingdom of nowhere">
	<style>.kingdom { color: red }</style>
	<script>var kingdom = "hidden";</script>
</head>
<body>
	<!-- kingdom in a comment -->
	<h1>United Kingdom</h1>
	<p>Capital: London &amp; more</p>
	<noscript><img src="/pixel.gif" alt="x">Enable scripts</noscript>
	<a href="/places/default/view/Fiji-76">Fiji</a>
	<a href="/places/default/view/Fiji-76#map">Fiji again</a>
	<a href="http://EXAMPLE.python-scraping.com/places/default/index/1">Next</a>
	<a href="https://other.example.org/">Elsewhere</a>
	<a href="http://static.python-scraping.com/logo">Static</a>
	<a href="mailto:webmaster@example.python-scraping.com">Mail</a>
	<a href="javascript:void(0)">Nothing</a>
	<a href="#top">Top</a>
	<a href="http://[::1">Broken</a>
	<a href="">Empty</a>
</body>
</html>`

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestTextVisibleOnly(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("example.python-scraping.com", false))

	words := utils.Words(e.Text([]byte(countryPage)))

	assert.Equal(t, []string{
		"united", "kingdom",
		"capital", "london", "more",
		"enable", "scripts",
		"fiji", "fiji", "again", "next", "elsewhere", "static", "mail", "nothing", "top", "broken", "empty",
	}, words)
}

func TestTextMalformedHTML(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("example.com", false))

	assert.NotPanics(t, func() {
		words := utils.Words(e.Text([]byte(`<html><body><p>Kingdom <b>unclosed <div></p>`)))
		assert.Equal(t, []string{"kingdom", "unclosed"}, words)
	})
	assert.Empty(t, utils.Words(e.Text(nil)))
}

func TestTextCollapsesWhitespace(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("example.com", false))

	assert.Equal(t, "United Kingdom Capital: London", e.Text([]byte("<body><h1>United\n\tKingdom</h1>  <p>Capital: London</p></body>")))
}

func TestAllows(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("example.com", false))

	assert.True(t, e.Allows(mustParse(t, "http://EXAMPLE.com/page")))
	assert.False(t, e.Allows(mustParse(t, "http://elsewhere.org/")))
}

func TestTextArticleFallsBackToVisible(t *testing.T) {
	e := New(ModeArticle, NewDomainFilter("example.com", false))

	// Too little content for trafilatura to call it an article.
	words := utils.Words(e.Text([]byte(`<html><body><p>Kingdom</p></body></html>`)))
	assert.Equal(t, []string{"kingdom"}, words)
}

func TestLinksSameHost(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("example.python-scraping.com", false))

	links := e.Links([]byte(countryPage), mustParse(t, "http://example.python-scraping.com/places/default/index"))

	assert.Equal(t, []string{
		"http://example.python-scraping.com/places/default/view/Fiji-76",
		"http://example.python-scraping.com/places/default/index/1",
	}, links)
}

func TestLinksIncludeSubdomains(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("example.python-scraping.com", true))
	assert.Equal(t, "python-scraping.com", e.Domain())

	links := e.Links([]byte(countryPage), mustParse(t, "http://example.python-scraping.com/"))

	assert.Contains(t, links, "http://static.python-scraping.com/logo")
	assert.NotContains(t, links, "https://other.example.org/")
}

func TestLinksRelativeResolution(t *testing.T) {
	e := New(ModeVisible, NewDomainFilter("127.0.0.1", true))
	body := []byte(`<a href="b">b</a><a href="../c">c</a><a href="//127.0.0.1/d">d</a>`)

	links := e.Links(body, mustParse(t, "http://127.0.0.1:8080/x/a"))

	assert.Equal(t, []string{
		"http://127.0.0.1:8080/x/b",
		"http://127.0.0.1:8080/c",
		"http://127.0.0.1/d",
	}, links)
}

func TestDomainFilter(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		subdomains bool
		link       string
		want       bool
	}{
		{"same host", "example.com", false, "http://example.com/a", true},
		{"host case", "Example.com", false, "http://EXAMPLE.COM/a", true},
		{"port ignored", "localhost", false, "http://localhost:9000/a", true},
		{"subdomain excluded", "example.com", false, "http://www.example.com/a", false},
		{"subdomain included", "www.example.com", true, "http://api.example.com/a", true},
		{"other site", "www.example.com", true, "http://example.org/a", false},
		{"ip exact only", "127.0.0.1", true, "http://127.0.0.2/a", false},
		{"no host", "example.com", false, "/relative", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDomainFilter(tt.host, tt.subdomains)
			assert.Equal(t, tt.want, f.Allows(mustParse(t, tt.link)))
		})
	}
}
