package utils

import (
	"fmt"
	"html"
	"iter"
	"net/url"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Tokens returns the lower-cased words of text. A word is a maximal run of
// letters and digits; everything else separates words. The sequence is lazy
// and can be ranged over any number of times.
func Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if isWordRune(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(strings.ToLower(text[start:i])) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(strings.ToLower(text[start:]))
		}
	}
}

// Words collects Tokens into a slice.
func Words(text string) []string {
	return slices.Collect(Tokens(text))
}

// Normalize reduces a query word to the token the index stores for it.
// Only the first token counts, so "Kingdom's" looks up "kingdom".
// It returns "" when the word has no letters or digits.
func Normalize(word string) string {
	for tok := range Tokens(word) {
		return tok
	}
	return ""
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// StripMarkup removes any tags left in raw text and decodes entities.
func StripMarkup(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// CleanText collapses runs of whitespace into single spaces
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeURL normalizes a URL for consistent comparison: the fragment is
// dropped, scheme and host are lower-cased and an empty path becomes "/".
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

var nonWebExts = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".pdf", ".zip", ".gz", ".mp4", ".mp3", ".css", ".js",
}

// IsWebpageURL reports whether a URL's path could name an HTML page.
func IsWebpageURL(u *url.URL) bool {
	p := strings.ToLower(u.Path)
	for _, ext := range nonWebExts {
		if strings.HasSuffix(p, ext) {
			return false
		}
	}
	return true
}
