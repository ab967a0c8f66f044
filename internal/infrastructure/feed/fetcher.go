package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/infrastructure/config"
)

// Defaults used when the feed section of the config leaves a value unset
const (
	DefaultTimeout   = 15 * time.Second
	DefaultMaxSize   = 10 * 1024 * 1024
	DefaultUserAgent = "marketplace-feed-fetcher/1.0"
)

// HTTPFetcher downloads feeds over HTTP(S)
type HTTPFetcher struct {
	client    *http.Client
	maxSize   int64
	userAgent string
	logger    *zap.Logger
}

// NewHTTPFetcher creates a fetcher from the feed configuration
func NewHTTPFetcher(cfg config.FeedConfig, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxSize:   maxSize,
		userAgent: userAgent,
		logger:    logger.Named("feed_fetcher"),
	}
}

// Fetch performs a single GET of feedURL
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, catalog.NewInvalidURLError(fmt.Sprintf("invalid feed url: %v", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain, */*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("feed request failed", zap.String("url", feedURL), zap.Error(err))
		return nil, catalog.NewFetchError(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, catalog.NewFetchError(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	if resp.ContentLength > f.maxSize {
		return nil, catalog.NewFetchError(fmt.Sprintf("feed exceeds %d bytes", f.maxSize))
	}

	// Read one byte past the cap to detect oversize bodies without a Content-Length
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, catalog.NewFetchError("timed out reading feed")
		}
		return nil, catalog.NewFetchError(fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > f.maxSize {
		return nil, catalog.NewFetchError(fmt.Sprintf("feed exceeds %d bytes", f.maxSize))
	}

	f.logger.Debug("feed downloaded",
		zap.String("url", feedURL),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)
	return body, nil
}
