package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

const (
	// DefaultTimeout bounds every single network call.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent is sent so file hosts serve the regular browser page.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	// DefaultAnchorID is the id of the direct download anchor on the indirect page.
	DefaultAnchorID = "downloadButton"

	// maxPageBytes caps how much of the indirect page is parsed (5 MB).
	maxPageBytes = 5 << 20
)

// LinkResolver extracts the direct archive URL from an indirect download page
type LinkResolver struct {
	client    *http.Client
	userAgent string
	anchorID  string
	logger    *log.Logger
}

// ResolverOption configures a LinkResolver
type ResolverOption func(*LinkResolver)

// WithResolverClient sets a custom HTTP client
func WithResolverClient(c *http.Client) ResolverOption {
	return func(r *LinkResolver) {
		r.client = c
	}
}

// WithResolverUserAgent sets the User-Agent header
func WithResolverUserAgent(ua string) ResolverOption {
	return func(r *LinkResolver) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithAnchorID sets the id attribute of the download anchor
func WithAnchorID(id string) ResolverOption {
	return func(r *LinkResolver) {
		if id != "" {
			r.anchorID = id
		}
	}
}

// WithResolverLogger sets the logger for request diagnostics
func WithResolverLogger(l *log.Logger) ResolverOption {
	return func(r *LinkResolver) {
		r.logger = l
	}
}

// NewLinkResolver creates a resolver with a 15s timeout and the default browser User-Agent
func NewLinkResolver(opts ...ResolverOption) *LinkResolver {
	r := &LinkResolver{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		anchorID:  DefaultAnchorID,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveDirectLink fetches pageURL and returns the href of the download anchor.
//
// It returns a *NetworkError on transport failure, timeout or non-2xx status,
// and a *LinkNotFoundError when the anchor is absent. An anchor without an
// href yields an empty string, which the caller must reject.
func (r *LinkResolver) ResolveDirectLink(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", &NetworkError{Op: "resolve", URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "resolve", URL: pageURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{Op: "resolve", URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &NetworkError{Op: "resolve", URL: pageURL, Err: fmt.Errorf("reading page: %w", err)}
	}

	anchor := findElementByID(doc, "a", r.anchorID)
	if anchor == nil {
		return "", &LinkNotFoundError{PageURL: pageURL, AnchorID: r.anchorID}
	}

	href, _ := attr(anchor, "href")
	r.logger.Debug("resolved direct link", "page", redactURL(pageURL), "link", redactURL(href))
	return strings.TrimSpace(href), nil
}

// findElementByID returns the first element named tag whose id attribute equals id
func findElementByID(n *html.Node, tag, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		if v, ok := attr(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElementByID(c, tag, id); found != nil {
			return found
		}
	}
	return nil
}

// attr returns the value of the named attribute on n
func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
