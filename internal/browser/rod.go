package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultCommentSelector matches the body of a Reddit comment.
const DefaultCommentSelector = `shreddit-comment div[slot="comment"]`

// RodConfig configures a RodCapability.
type RodConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string
	// Headful shows the browser window when launching locally.
	Headful bool
	// StableFor is how long the page must stay unchanged for WaitStable. Default: 1s.
	StableFor time.Duration

	Logger *slog.Logger
}

var _ Capability = (*RodCapability)(nil)

// RodCapability drives a single stealth page in Chrome through go-rod.
type RodCapability struct {
	cfg     RodConfig
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
}

// NewRodCapability launches (or connects to) Chrome and opens a stealth page.
func NewRodCapability(ctx context.Context, cfg RodConfig) (*RodCapability, error) {
	if cfg.StableFor <= 0 {
		cfg.StableFor = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := &RodCapability{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL != "" {
		cfg.Logger.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Context(ctx).Headless(!cfg.Headful)
		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		c.lnch = l
		cfg.Logger.Info("browser: launched local chrome", "url", wsURL, "headful", cfg.Headful)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		c.Close()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	c.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("browser: create page: %w", err)
	}
	c.page = page
	return c, nil
}

func (c *RodCapability) Navigate(ctx context.Context, url string) error {
	p := c.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (c *RodCapability) Search(ctx context.Context, selector, query string) error {
	el, err := c.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("find search box %q: %w", selector, err)
	}
	if err := el.Input(query); err != nil {
		return fmt.Errorf("type query: %w", err)
	}
	if err := el.Type(input.Enter); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	if err := c.page.Context(ctx).WaitLoad(); err != nil {
		c.cfg.Logger.Warn("browser: wait load after search", "error", err)
	}
	return nil
}

func (c *RodCapability) Click(ctx context.Context, selector string) error {
	el, err := c.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("find %q: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (c *RodCapability) FirstComment(ctx context.Context, selector string) (string, error) {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultCommentSelector
	}
	return c.ExtractText(ctx, selector)
}

func (c *RodCapability) ExtractText(ctx context.Context, selector string) (string, error) {
	el, err := c.page.Context(ctx).Element(selector)
	if err != nil {
		return "", fmt.Errorf("find %q: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read text of %q: %w", selector, err)
	}
	return text, nil
}

func (c *RodCapability) WaitStable(ctx context.Context) error {
	if err := c.page.Context(ctx).WaitStable(c.cfg.StableFor); err != nil {
		return fmt.Errorf("wait stable: %w", err)
	}
	return nil
}

// Close shuts down the page and any Chrome this capability launched. A
// remote Chrome is left running; only its page is closed.
func (c *RodCapability) Close() error {
	var firstErr error
	if c.page != nil {
		if err := c.page.Close(); err != nil {
			firstErr = err
		}
		c.page = nil
	}
	if c.browser != nil && c.cfg.RemoteURL == "" {
		if err := c.browser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.browser = nil
	if c.lnch != nil {
		c.lnch.Cleanup()
		c.lnch = nil
	}
	return firstErr
}
