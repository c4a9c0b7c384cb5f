package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/retry"
	"shopmate/internal/ports"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 2 << 20

// Fetcher runs the retrieval pipeline: validate, allowlist, profile
// resolution, cache, rate limit, bounded HTTP GET with backoff, extract,
// cache store. All failures come back as *domain.Failure; nothing is
// raised past this boundary.
type Fetcher struct {
	cfg       domain.FetchSettings
	allowlist *Allowlist
	extractor ports.Extractor
	log       ports.Logger

	client  *http.Client
	limiter *RateLimiter
	cache   *ResponseCache
	sleep   retry.Sleeper
	now     func() time.Time
}

// Option adjusts a Fetcher at construction; used by tests to inject clocks
// and transports.
type Option func(*Fetcher)

// WithClock substitutes the time source for the cache, limiter and result
// stamps.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
		f.limiter = NewRateLimiter(now)
		f.cache = NewResponseCache(now)
	}
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithSleeper substitutes the backoff sleeper.
func WithSleeper(sleep retry.Sleeper) Option {
	return func(f *Fetcher) { f.sleep = sleep }
}

// NewFetcher builds the Fetch Core with its own rate limiter and response
// cache instances.
func NewFetcher(cfg domain.FetchSettings, allowlist *Allowlist, extractor ports.Extractor, log ports.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		cfg:       cfg,
		allowlist: allowlist,
		extractor: extractor,
		log:       log,
		client:    &http.Client{},
		limiter:   NewRateLimiter(nil),
		cache:     NewResponseCache(nil),
		sleep:     retry.SleepWithContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements ports.Fetcher. cacheTTL overrides the matched domain's
// default TTL when positive.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, profile domain.ExtractionProfile, cacheTTL time.Duration) (domain.FetchResult, error) {
	u, failure := validateURL(rawURL)
	if failure != nil {
		return domain.FetchResult{}, failure
	}

	entry, ok := f.allowlist.Match(u.Hostname())
	if !ok {
		return domain.FetchResult{}, domain.NewFailure(domain.FailPolicyDenied, "fetch",
			"domain not allow-listed: "+u.Hostname())
	}

	effective := resolveProfile(entry, profile)

	if cached, hit := f.cache.Get(rawURL, effective); hit {
		f.log.Debug("fetch served from cache", map[string]interface{}{"url": rawURL, "profile": string(effective)})
		cached.Source = domain.SourceCache
		return cached, nil
	}

	if !f.limiter.Allow(u.Hostname(), entry.RequestsPerMinute) {
		return domain.FetchResult{}, domain.NewFailure(domain.FailRateLimited, "fetch",
			"rate limit reached for "+u.Hostname())
	}

	body, err := f.download(ctx, rawURL)
	if err != nil {
		f.log.Warn("fetch failed", map[string]interface{}{"url": rawURL, "error": err.Error()})
		return domain.FetchResult{}, domain.AsFailure(err, "fetch")
	}

	extraction := f.extractor.Extract(body, rawURL, effective)
	result := domain.FetchResult{
		URL:       rawURL,
		Profile:   effective,
		Source:    domain.SourceLive,
		Content:   extraction.Content,
		Metadata:  extraction.Metadata,
		FetchedAt: f.now(),
	}

	ttl := cacheTTL
	if ttl <= 0 {
		ttl = entry.CacheTTL()
	}
	if ttl <= 0 {
		ttl = f.cfg.DefaultCacheTTL()
	}
	f.cache.Set(result, ttl)

	return result, nil
}

// download performs the timeout-bounded GET under the shared retry
// discipline, returning the page body.
func (f *Fetcher) download(ctx context.Context, rawURL string) (string, error) {
	policy := retry.Config{
		MaxAttempts: f.cfg.MaxAttempts,
		BaseDelay:   f.cfg.BaseDelay(),
	}

	var body string
	err := retry.Do(ctx, policy, f.sleep, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout())
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
		if err != nil {
			return domain.WrapFailure(domain.FailValidation, "fetch", err)
		}
		f.setBrowserHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			return domain.ClassifyTransport("fetch", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return domain.ClassifyStatus("fetch", resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return domain.ClassifyTransport("fetch", err)
		}
		body = string(data)
		return nil
	})
	return body, err
}

// setBrowserHeaders applies browser-like request headers to reduce
// anti-bot rejection.
func (f *Fetcher) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
}

var _ ports.Fetcher = (*Fetcher)(nil)
