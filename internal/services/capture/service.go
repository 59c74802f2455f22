package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/artifex/internal/common"
)

// Service captures website screenshots with a headless Chrome instance.
// Each capture spins up its own allocator so a crashed browser never
// poisons later captures.
type Service struct {
	config    common.CaptureConfig
	userAgent string
	logger    arbor.ILogger
}

// NewService creates a screenshot capture service from application config.
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		config:    cfg.Capture,
		userAgent: cfg.Fetch.UserAgent,
		logger:    logger.WithPrefix("capture"),
	}
}

// Screenshot navigates to the URL and captures a PNG of the viewport.
// When fullPage is true the capture extends past the fold to the full
// scroll height of the document.
func (s *Service) Screenshot(ctx context.Context, url string, fullPage bool) ([]byte, error) {
	allocatorOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.userAgent),
	)

	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	defer cancelAllocator()

	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx)
	defer cancelBrowser()

	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	width, height := s.viewport()

	s.logger.Debug().
		Str("url", url).
		Int("width", width).
		Int("height", height).
		Bool("full_page", fullPage).
		Msg("Capturing screenshot")

	var buf []byte
	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Give late-loading assets a moment to settle before capture.
		chromedp.Sleep(500 * time.Millisecond),
	}
	if fullPage {
		tasks = append(tasks, chromedp.FullScreenshot(&buf, 90))
	} else {
		tasks = append(tasks, chromedp.CaptureScreenshot(&buf))
	}

	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot of %s: %w", url, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("screenshot of %s produced no data", url)
	}

	s.logger.Info().
		Str("url", url).
		Int("bytes", len(buf)).
		Msg("Screenshot captured")

	return buf, nil
}

func (s *Service) viewport() (int, int) {
	width := s.config.ViewportWidth
	if width <= 0 {
		width = 1920
	}
	height := s.config.ViewportHeight
	if height <= 0 {
		height = 1080
	}
	return width, height
}
