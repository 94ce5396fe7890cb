package perf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/nao1215/seoscan/internal/fetcher"
)

// Sampler defaults.
const (
	// DefaultSettleDelay is how long to wait after network idle so that late
	// layout shifts are still counted.
	DefaultSettleDelay = 2 * time.Second

	// DefaultTimeout bounds a single sampling run.
	DefaultTimeout = 30 * time.Second

	// idleWindow is how long the network must be quiet to count as idle.
	idleWindow = 500 * time.Millisecond
)

// ErrBrowserUnavailable is returned when Chromium cannot be launched or
// reached.
var ErrBrowserUnavailable = errors.New("headless browser unavailable")

// observerScript runs before any page script. It records the last LCP entry,
// the sum of layout shifts not caused by user input, and the first paint.
const observerScript = `(() => {
	window.__perfMetrics = { lcp: 0, cls: 0, fcp: 0 };
	const watch = (type, fn) => {
		try {
			new PerformanceObserver((list) => fn(list.getEntries())).observe({ type, buffered: true });
		} catch (e) {}
	};
	watch('largest-contentful-paint', (entries) => {
		const last = entries[entries.length - 1];
		if (last) window.__perfMetrics.lcp = last.startTime;
	});
	watch('layout-shift', (entries) => {
		for (const entry of entries) {
			if (!entry.hadRecentInput) window.__perfMetrics.cls += entry.value;
		}
	});
	watch('paint', (entries) => {
		const first = entries[0];
		if (first) window.__perfMetrics.fcp = first.startTime;
	});
})();`

// collectScript reads the observer values and the navigation timing entry.
// Navigation-derived values are zero when no entry exists.
const collectScript = `() => {
	const m = window.__perfMetrics || { lcp: 0, cls: 0, fcp: 0 };
	const nav = performance.getEntriesByType('navigation')[0];
	return {
		lcp: m.lcp,
		cls: m.cls,
		fcp: m.fcp,
		ttfb: nav ? nav.responseStart - nav.requestStart : 0,
		load_time: nav ? nav.loadEventEnd - nav.startTime : 0,
		dom_content_loaded: nav ? nav.domContentLoadedEventEnd - nav.startTime : 0,
	};
}`

// RodOptions configures a RodSampler.
type RodOptions struct {
	// BrowserBin is the Chromium binary. Empty lets rod find or download one.
	BrowserBin string

	// ControlURL connects to an already running browser instead of launching.
	ControlURL string

	// NoSandbox disables the Chromium sandbox (needed in most containers).
	NoSandbox bool

	// Stealth masks common headless-browser fingerprints.
	Stealth bool

	// SettleDelay is the wait after network idle.
	SettleDelay time.Duration

	// Timeout bounds one sampling run.
	Timeout time.Duration

	// SiteOptions resolves the user agent, cookie, and extra headers for
	// a page's host. Nil keeps the browser defaults.
	SiteOptions func(u *url.URL) fetcher.SiteOptions

	// Logger receives debug output.
	Logger *slog.Logger
}

// RodOption configures a RodSampler.
type RodOption func(*RodOptions)

// WithBrowserBin sets the Chromium binary path.
func WithBrowserBin(bin string) RodOption {
	return func(o *RodOptions) { o.BrowserBin = bin }
}

// WithControlURL connects to an existing browser over CDP.
func WithControlURL(u string) RodOption {
	return func(o *RodOptions) { o.ControlURL = u }
}

// WithNoSandbox disables the Chromium sandbox.
func WithNoSandbox(noSandbox bool) RodOption {
	return func(o *RodOptions) { o.NoSandbox = noSandbox }
}

// WithStealth enables fingerprint masking.
func WithStealth(enabled bool) RodOption {
	return func(o *RodOptions) { o.Stealth = enabled }
}

// WithSettleDelay sets the post-idle wait.
func WithSettleDelay(d time.Duration) RodOption {
	return func(o *RodOptions) { o.SettleDelay = d }
}

// WithSampleTimeout sets the per-run timeout.
func WithSampleTimeout(d time.Duration) RodOption {
	return func(o *RodOptions) { o.Timeout = d }
}

// WithSiteOptions registers the per-host override resolver.
func WithSiteOptions(fn func(u *url.URL) fetcher.SiteOptions) RodOption {
	return func(o *RodOptions) { o.SiteOptions = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RodOption {
	return func(o *RodOptions) { o.Logger = l }
}

// RodSampler samples pages in headless Chromium. The browser is started on
// the first Sample call and shared by later calls; it is safe for
// concurrent use. Call Close to stop the browser.
type RodSampler struct {
	opts RodOptions

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRodSampler creates a sampler. No browser is started until Sample.
func NewRodSampler(opts ...RodOption) *RodSampler {
	o := RodOptions{
		SettleDelay: DefaultSettleDelay,
		Timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return &RodSampler{opts: o}
}

// Sample implements Sampler.
func (s *RodSampler) Sample(ctx context.Context, pageURL string) (*Sample, error) {
	browser, err := s.connect()
	if err != nil {
		return nil, err
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			s.opts.Logger.Debug("failed to close page", "error", cerr)
		}
	}()

	// Everything installed on the page must precede navigation.
	if s.opts.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			s.opts.Logger.Warn("stealth injection failed", "error", err)
		}
	}
	if _, err := page.EvalOnNewDocument(observerScript); err != nil {
		return nil, fmt.Errorf("failed to install performance observers: %w", err)
	}
	ov := s.overridesFor(pageURL)
	if ov.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ov.userAgent}); err != nil {
			s.opts.Logger.Debug("failed to override user agent", "error", err)
		}
	}
	if len(ov.headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: ov.headers}).Call(page); err != nil {
			s.opts.Logger.Debug("failed to set extra headers", "error", err)
		}
	}
	if len(ov.cookies) > 0 {
		if err := page.SetCookies(ov.cookies); err != nil {
			s.opts.Logger.Warn("failed to set cookies", "url", pageURL, "error", err)
		}
	}

	p := page.Context(ctx)
	waitIdle := p.WaitRequestIdle(idleWindow, nil, nil, nil)

	s.opts.Logger.Debug("sampling performance", "url", pageURL)
	if err := p.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}
	waitIdle()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.opts.SettleDelay):
	}

	res, err := p.Eval(collectScript)
	if err != nil {
		return nil, fmt.Errorf("failed to collect performance metrics: %w", err)
	}
	return sampleFromJSON(res.Value), nil
}

// Close stops the browser if this sampler started it.
func (s *RodSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A browser reached through ControlURL belongs to someone else.
	var err error
	if s.browser != nil && s.launcher != nil {
		err = s.browser.Close()
	}
	s.browser = nil
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

func (s *RodSampler) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	controlURL := s.opts.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Headless(true).
			NoSandbox(s.opts.NoSandbox)
		if s.opts.BrowserBin != "" {
			l = l.Bin(s.opts.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBrowserUnavailable, err)
		}
		s.launcher = l
		controlURL = u
		s.opts.Logger.Debug("browser launched", "control_url", controlURL)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBrowserUnavailable, err)
	}
	s.browser = browser
	return browser, nil
}

// sampleFromJSON decodes the collectScript result.
func sampleFromJSON(v gson.JSON) *Sample {
	return &Sample{
		LCP:              v.Get("lcp").Num(),
		CLS:              v.Get("cls").Num(),
		FCP:              v.Get("fcp").Num(),
		TTFB:             v.Get("ttfb").Num(),
		LoadTime:         v.Get("load_time").Num(),
		DOMContentLoaded: v.Get("dom_content_loaded").Num(),
	}
}

// overrides are the per-host request settings applied before navigation.
type overrides struct {
	userAgent string
	headers   proto.NetworkHeaders
	cookies   []*proto.NetworkCookieParam
}

// overridesFor resolves the settings for pageURL's host. Cookies are bound
// to pageURL so subresources on other hosts never receive them.
func (s *RodSampler) overridesFor(pageURL string) overrides {
	var ov overrides
	if s.opts.SiteOptions == nil {
		return ov
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ov
	}
	so := s.opts.SiteOptions(u)

	ov.userAgent = so.UserAgent
	if len(so.Headers) > 0 {
		ov.headers = make(proto.NetworkHeaders, len(so.Headers))
		for k, v := range so.Headers {
			ov.headers[k] = gson.New(v)
		}
	}
	if cookie := strings.TrimSpace(so.Cookie); cookie != "" {
		parsed, err := http.ParseCookie(cookie)
		if err != nil {
			s.opts.Logger.Warn("ignoring malformed cookie", "host", u.Hostname(), "error", err)
			return ov
		}
		for _, c := range parsed {
			ov.cookies = append(ov.cookies, &proto.NetworkCookieParam{
				Name:  c.Name,
				Value: c.Value,
				URL:   pageURL,
			})
		}
	}
	return ov
}
