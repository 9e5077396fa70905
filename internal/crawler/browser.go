package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"devsurvey/internal/config"
	"devsurvey/internal/logger"
)

// BrowserFetcher renders pages in headless Chromium. The browser is
// launched on first use and shared by every fetch until Close.
type BrowserFetcher struct {
	cfg    config.BrowserConfig
	logger *logger.Logger

	mu      sync.Mutex
	launch  *launcher.Launcher
	browser *rod.Browser
	closed  bool
}

// ErrBrowserClosed is returned by FetchHTML after Close.
var ErrBrowserClosed = errors.New("browser closed")

// NewBrowserFetcher creates a fetcher. Nothing is launched until the first fetch.
func NewBrowserFetcher(cfg config.BrowserConfig, log *logger.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		cfg:    cfg,
		logger: log.Component("browser"),
	}
}

func (b *BrowserFetcher) connect(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrowserClosed
	}

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(b.cfg.Headless)
	if b.cfg.Bin != "" {
		l = l.Bin(b.cfg.Bin)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()

		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.logger.Info("Browser launched", "headless", b.cfg.Headless)

	b.launch = l
	b.browser = browser

	return browser, nil
}

// FetchHTML implements PageFetcher: navigate, wait for load, then give the
// page up to the settle delay to render a table.
func (b *BrowserFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	browser, err := b.connect(ctx)
	if err != nil {
		return "", err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := b.navigate(page, url); err != nil {
		return "", err
	}

	settle := page.Timeout(b.cfg.SettleDelay())
	_, err = settle.Element("table")
	settle.CancelTimeout()

	if err != nil {
		b.logger.Warn("No table rendered within settle delay", "url", url, "settle", b.cfg.SettleDelay())
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page html: %w", err)
	}

	return html, nil
}

func (b *BrowserFetcher) navigate(page *rod.Page, url string) error {
	nav := page.Timeout(b.cfg.NavigationTimeout())
	defer nav.CancelTimeout()

	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("page %s did not load: %w", url, err)
	}

	return nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	if b.browser == nil {
		return nil
	}

	err := b.browser.Close()
	b.launch.Cleanup()
	b.browser = nil
	b.launch = nil

	return err
}
