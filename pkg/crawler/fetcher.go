package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const defaultMaxBodyBytes = 10 << 20

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// ContentTypeError is returned for responses that are not HTML pages
type ContentTypeError struct {
	URL         string
	ContentType string
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("fetch %s: non-webpage content type %q", e.URL, e.ContentType)
}

// HTTPFetcher fetches pages with a plain GET
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHTTPFetcher creates a fetcher with the given request timeout
func NewHTTPFetcher(timeout time.Duration, userAgent string, maxBodyBytes int64) *HTTPFetcher {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	return &HTTPFetcher{
		client:       &http.Client{Transport: transport, Timeout: timeout},
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isWebpageMIME(contentType) {
		return nil, "", &ContentTypeError{URL: pageURL, ContentType: contentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body of %s: %w", pageURL, err)
	}
	return body, resp.Request.URL.String(), nil
}

var webpageMIMEs = []string{"text/html", "application/xhtml+xml"}

// isWebpageMIME accepts HTML content types. A missing header is treated as
// HTML since many small sites never send one.
func isWebpageMIME(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, m := range webpageMIMEs {
		if m == mediaType {
			return true
		}
	}
	return false
}

// isContentError reports whether err came from the page rather than the
// network.
func isContentError(err error) bool {
	var statusErr *StatusError
	var typeErr *ContentTypeError
	return errors.As(err, &statusErr) || errors.As(err, &typeErr)
}
