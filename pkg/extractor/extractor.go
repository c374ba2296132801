package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/indexsmith/pkg/utils"
)

// Mode selects how page text is extracted
type Mode string

const (
	// ModeVisible indexes every piece of text a reader would see.
	ModeVisible Mode = "visible"
	// ModeArticle indexes the main content only, as found by trafilatura.
	ModeArticle Mode = "article"
)

// hiddenTags hold text that is never rendered as page content
var hiddenTags = map[string]bool{
	"head":     true,
	"title":    true,
	"meta":     true,
	"script":   true,
	"style":    true,
	"template": true,
}

// Extractor handles content extraction from HTML
type Extractor struct {
	mode   Mode
	filter DomainFilter
}

// New creates a new Extractor that keeps links accepted by filter
func New(mode Mode, filter DomainFilter) *Extractor {
	if mode == "" {
		mode = ModeVisible
	}
	return &Extractor{mode: mode, filter: filter}
}

// Domain returns the domain the extractor keeps links for
func (e *Extractor) Domain() string {
	return e.filter.String()
}

// Allows reports whether u is on the domain the extractor keeps links for
func (e *Extractor) Allows(u *url.URL) bool {
	return e.filter.Allows(u)
}

// Text extracts the indexable text of an HTML page. Malformed HTML yields
// whatever text the parser recovered, possibly none.
func (e *Extractor) Text(body []byte) string {
	if e.mode == ModeArticle {
		result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{})
		if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
			return utils.CleanText(result.ContentText)
		}
	}
	return utils.CleanText(visibleText(body))
}

func visibleText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if hiddenTags[n.Data] {
				return
			}
			// noscript content is parsed as raw text and may carry tags
			if n.Data == "noscript" {
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(utils.StripMarkup(c.Data))
						b.WriteByte(' ')
					}
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

// Links returns the absolute same-domain page links of an HTML document in
// document order, without duplicates or fragments. Links that cannot be
// parsed or resolved are dropped.
func (e *Extractor) Links(body []byte, base *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !e.filter.Allows(abs) {
			return
		}
		normalized, err := utils.NormalizeURL(abs.String())
		if err != nil || seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})
	return links
}
