package listfetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/email-trust/internal/config"
	"github.com/mikey/email-trust/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrAllSourcesFailed is returned when every source/attempt
	// combination for a list has been exhausted
	ErrAllSourcesFailed = errors.New("all list sources failed")
	// ErrRateLimited marks a 429 response; it abandons the remaining
	// retries on that source instead of waiting the limit out
	ErrRateLimited = errors.New("source rate limited")
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 5 * time.Second
)

// Source is one upstream location for a domain list
type Source struct {
	URL        string
	MaxRetries int
	// HourlyCacheBust appends an hour-granular version query parameter
	// so CDN mirrors re-validate at most once an hour
	HourlyCacheBust bool
}

// Fetcher retrieves newline-delimited domain lists over HTTP, trying a
// primary origin and then a mirror, with a bounded retry budget per source.
type Fetcher struct {
	client  *http.Client
	logger  *zap.Logger
	timeout time.Duration
	sources map[core.ListKind][]Source
	sleep   func(time.Duration)
	now     func() time.Time
}

// NewFetcher creates a fetcher from the list configuration
func NewFetcher(cfg config.ListsConfig, logger *zap.Logger) *Fetcher {
	retries := cfg.FetchRetries
	if retries < 1 {
		retries = 1
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{},
		logger:  logger,
		timeout: timeout,
		sources: map[core.ListKind][]Source{
			core.ListDisposable: {
				{URL: cfg.Disposable.PrimaryURL, MaxRetries: retries},
				{URL: cfg.Disposable.FallbackURL, MaxRetries: retries, HourlyCacheBust: true},
			},
			core.ListAllowed: {
				{URL: cfg.Allowed.PrimaryURL, MaxRetries: retries},
				{URL: cfg.Allowed.FallbackURL, MaxRetries: retries, HourlyCacheBust: true},
			},
		},
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Fetch retrieves one domain list. The disposable list returns
// ErrAllSourcesFailed on total failure; the allowed list is optional
// enrichment and collapses a total failure to an empty result.
func (f *Fetcher) Fetch(ctx context.Context, kind core.ListKind) ([]string, core.ListSource, error) {
	sources := f.sources[kind]
	for i, src := range sources {
		lines, err := f.fetchSource(ctx, kind, src)
		if err == nil {
			label := core.SourcePrimary
			if i > 0 {
				label = core.SourceFallback
			}
			f.logger.Info("Fetched domain list",
				zap.String("kind", string(kind)),
				zap.String("source", string(label)),
				zap.Int("entries", len(lines)))
			return lines, label, nil
		}
		f.logger.Warn("List source exhausted",
			zap.String("kind", string(kind)),
			zap.String("url", src.URL),
			zap.Error(err))
	}

	if kind == core.ListAllowed {
		f.logger.Warn("All allowed-list sources failed, continuing without allowlist")
		return []string{}, core.SourceNone, nil
	}
	return nil, core.SourceNone, fmt.Errorf("%w: %s", ErrAllSourcesFailed, kind)
}

// fetchSource runs the retry loop for a single source
func (f *Fetcher) fetchSource(ctx context.Context, kind core.ListKind, src Source) ([]string, error) {
	var lastErr error
	for attempt := 1; attempt <= src.MaxRetries; attempt++ {
		lines, err := f.fetchOnce(ctx, src)
		if err == nil {
			return lines, nil
		}
		lastErr = err

		if errors.Is(err, ErrRateLimited) {
			// Move to the next source rather than burning the
			// retry budget against a rate limiter
			return nil, err
		}
		f.logger.Debug("List fetch attempt failed",
			zap.String("kind", string(kind)),
			zap.String("url", src.URL),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < src.MaxRetries {
			f.sleep(backoffDelay(attempt))
		}
	}
	return nil, lastErr
}

// fetchOnce performs one HTTP attempt, bounded by the configured timeout
func (f *Fetcher) fetchOnce(ctx context.Context, src Source) ([]string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	url := src.URL
	if src.HourlyCacheBust {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "v=" + strconv.FormatInt(f.now().Truncate(time.Hour).Unix(), 10)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	lines, err := parseDomainList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read list body: %w", err)
	}
	return lines, nil
}

// backoffDelay is exponential with a cap: 1s, 2s, 4s, then 5s
func backoffDelay(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay
}

// parseDomainList reads a newline-delimited list, dropping blank lines,
// # comments and tokens that cannot be a domain (no dot).
func parseDomainList(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		token := strings.TrimSpace(scanner.Text())
		if token == "" || strings.HasPrefix(token, "#") {
			continue
		}
		if !strings.Contains(token, ".") {
			continue
		}
		lines = append(lines, token)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
