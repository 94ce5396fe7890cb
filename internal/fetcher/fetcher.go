package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/seoscan/internal/rules"
)

// Defaults.
const (
	// DefaultUserAgent identifies seoscan to the audited site.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/nao1215/seoscan)"

	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize caps how much of each response is read.
	DefaultMaxBodySize int64 = 5 << 20

	// maxRedirects matches common browser limits.
	maxRedirects = 10
)

// ErrFetchFailed is returned when the page itself cannot be retrieved.
var ErrFetchFailed = errors.New("failed to fetch")

// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid URL")

// Page is a fetched page plus its origin's auxiliary files.
type Page struct {
	// URL is the requested address.
	URL string

	// FinalURL is the address after redirects.
	FinalURL string

	// StatusCode is the page response status.
	StatusCode int

	// HTML is the page body decoded to UTF-8.
	HTML string

	// Extras holds robots.txt and sitemap.xml text, empty when unavailable.
	Extras rules.Extras
}

// SiteOptions are per-site request overrides.
type SiteOptions struct {
	UserAgent string
	Cookie    string
	Headers   map[string]string
}

// Fetcher performs the requests. It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	headers     map[string]string
	cookie      string
	maxBodySize int64
	limiter     *rate.Limiter
	siteOptions func(u *url.URL) SiteOptions
	logger      *slog.Logger
	browserTLS  bool
	timeout     time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(h map[string]string) Option {
	return func(f *Fetcher) { f.headers = h }
}

// WithCookie sends a Cookie header with every request.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) { f.cookie = cookie }
}

// WithMaxBodySize caps how many bytes of each response are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithRequestDelay spaces requests at least d apart. Zero disables pacing.
func WithRequestDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithSiteOptions registers a resolver for per-site overrides. Values it
// returns take precedence over the fetcher-wide settings.
func WithSiteOptions(fn func(u *url.URL) SiteOptions) Option {
	return func(f *Fetcher) { f.siteOptions = fn }
}

// WithBrowserTLS presents a Chrome TLS fingerprint instead of Go's.
// Some CDNs reject Go's default ClientHello.
func WithBrowserTLS(enabled bool) Option {
	return func(f *Fetcher) { f.browserTLS = enabled }
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	if f.client == nil {
		f.client = &http.Client{
			Timeout:       f.timeout,
			CheckRedirect: limitRedirects,
		}
		if f.browserTLS {
			f.client.Transport = newBrowserTransport()
		}
	}
	return f
}

// Fetch retrieves pageURL, robots.txt, and sitemap.xml concurrently.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}
	origin := u.Scheme + "://" + u.Host

	page := &Page{URL: pageURL}
	var (
		g       errgroup.Group
		pageErr error
	)
	g.Go(func() error {
		body, final, status, err := f.get(ctx, u, pageURL, true)
		if err != nil {
			pageErr = err
			return nil
		}
		page.HTML, page.FinalURL, page.StatusCode = body, final, status
		return nil
	})
	g.Go(func() error {
		page.Extras.RobotsTxt = f.optional(ctx, u, origin+"/robots.txt")
		return nil
	})
	g.Go(func() error {
		page.Extras.SitemapXML = f.optional(ctx, u, origin+"/sitemap.xml")
		return nil
	})
	_ = g.Wait()

	if pageErr != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrFetchFailed, pageURL, pageErr)
	}
	if page.HTML == "" {
		return nil, fmt.Errorf("%w %s: empty response body", ErrFetchFailed, pageURL)
	}
	return page, nil
}

// optional fetches an auxiliary file, returning "" on any failure.
func (f *Fetcher) optional(ctx context.Context, site *url.URL, target string) string {
	body, _, _, err := f.get(ctx, site, target, false)
	if err != nil {
		f.logger.Debug("auxiliary file unavailable", "url", target, "error", err)
		return ""
	}
	return body
}

// get performs one GET. Non-2xx responses are errors.
func (f *Fetcher) get(ctx context.Context, site *url.URL, target string, decode bool) (string, string, int, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", "", 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to build request: %w", err)
	}
	f.applyHeaders(req, site)

	f.logger.Debug("fetching", "url", target)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Debug("failed to close response body", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var r io.Reader = io.LimitReader(resp.Body, f.maxBodySize)
	if decode {
		decoded, err := charset.NewReader(r, resp.Header.Get("Content-Type"))
		if err == nil {
			r = decoded
		}
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", "", resp.StatusCode, fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), resp.Request.URL.String(), resp.StatusCode, nil
}

func (f *Fetcher) applyHeaders(req *http.Request, site *url.URL) {
	ua, cookie := f.userAgent, f.cookie
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	if f.siteOptions != nil {
		so := f.siteOptions(site)
		if so.UserAgent != "" {
			ua = so.UserAgent
		}
		if so.Cookie != "" {
			cookie = so.Cookie
		}
		for k, v := range so.Headers {
			req.Header.Set(k, v)
		}
	}

	req.Header.Set("User-Agent", ua)
	if cookie != "" {
		req.Header.Set("Cookie", strings.TrimSpace(cookie))
	}
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}
