// Package browser owns the rendering-engine sessions. Each worker gets its
// own Chrome instance; nothing here is shared across workers.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/config"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/extract"
)

// Session is one worker's rendering session: a launched Chrome, a stealth
// page with automation fingerprinting suppressed, and a navigation rate
// limiter.
type Session struct {
	cfg     config.BrowserConfig
	lnch    *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	rl      ratelimit.Limiter
}

// NewSession launches Chrome with the configured pass-through flags and
// opens a stealth page. proxyURL may be empty for a direct connection.
func NewSession(cfg config.BrowserConfig, proxyURL string) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage")

	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if cfg.DisableWebSecurity {
		l = l.Set("disable-web-security")
	}
	if cfg.StartMaximized {
		l = l.Set("start-maximized")
	}
	if proxyURL != "" {
		l = l.Proxy(proxyURL)
		log.Infof("browser session using proxy %s", proxyURL)
	}

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	// stealth.Page runs the fingerprint-suppression script before any
	// document scripts, hiding navigator.webdriver and friends.
	page, err := stealth.Page(b)
	if err != nil {
		b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open stealth page: %w", err)
	}

	return &Session{
		cfg:     cfg,
		lnch:    l,
		browser: b,
		page:    page,
		rl:      ratelimit.New(max(cfg.NavsPerSecond, 1)),
	}, nil
}

// Render navigates to the address, waits for the page to reach a minimally
// ready state, sleeps the settle delay for asynchronous rendering, and
// returns a parsed snapshot.
func (s *Session) Render(ctx context.Context, url string, settle time.Duration) (*extract.Snapshot, error) {
	s.rl.Take()

	navCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.NavTimeout)*time.Second)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	waitTimeout := time.Duration(s.cfg.WaitTimeout) * time.Second
	if _, err := p.Timeout(waitTimeout).Element("body"); err != nil {
		log.Warnf("timed out waiting for %s to become ready: %v", url, err)
	}

	if settle > 0 {
		time.Sleep(settle)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML from %s: %w", url, err)
	}

	title := ""
	if info, err := p.Info(); err == nil {
		title = info.Title
	} else {
		log.Debugf("failed to read page title for %s: %v", url, err)
	}

	return extract.NewSnapshot(url, title, html)
}

// Close tears down the page, browser, and launcher.
func (s *Session) Close() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Debugf("failed to close page: %v", err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Debugf("failed to close browser: %v", err)
		}
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
	}
}
