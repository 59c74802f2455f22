package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/artifex/internal/common"
)

// Service performs outbound HTTP fetches for URL-based tools. All
// requests go through a shared rate limiter and a response size cap
// so a single job cannot flood a target or exhaust memory.
type Service struct {
	client        *http.Client
	limiter       *rate.Limiter
	userAgent     string
	maxBodySize   int
	allowTestURLs bool
	logger        arbor.ILogger
}

// NewService creates a fetch service from configuration
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	interval, err := time.ParseDuration(config.Fetch.RateLimit)
	if err != nil || interval <= 0 {
		interval = 500 * time.Millisecond
	}

	maxBody := config.Fetch.MaxBodySize
	if maxBody <= 0 {
		maxBody = 10 * 1024 * 1024
	}

	return &Service{
		client: &http.Client{
			Timeout: config.Fetch.RequestTimeout,
		},
		limiter:       rate.NewLimiter(rate.Every(interval), 1),
		userAgent:     config.Fetch.UserAgent,
		maxBodySize:   maxBody,
		allowTestURLs: config.AllowTestURLs(),
		logger:        logger,
	}
}

// ValidateURL checks that a URL is fetchable: absolute, http(s), and
// not pointing at loopback or private addresses in production
func (s *Service) ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q: only http and https are allowed", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no host")
	}

	if s.allowTestURLs {
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
			return fmt.Errorf("URLs targeting private addresses are not allowed")
		}
	}

	return nil
}

// Get fetches a URL and returns the body and content type. The body
// is truncated at the configured size cap; exceeding it is an error
// rather than a silent partial read.
func (s *Service) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	if err := s.ValidateURL(rawURL); err != nil {
		return nil, "", err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(s.maxBodySize)+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > s.maxBodySize {
		return nil, "", fmt.Errorf("response body exceeds %d byte limit", s.maxBodySize)
	}

	s.logger.Debug().
		Str("url", rawURL).
		Int("bytes", len(body)).
		Str("duration", time.Since(started).Round(time.Millisecond).String()).
		Msg("Fetched URL")

	return body, resp.Header.Get("Content-Type"), nil
}
