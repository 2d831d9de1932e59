package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Options struct {
	Headless  bool
	UserAgent string
	Cookies   []playwright.OptionalCookie
}

// Session owns one playwright driver, browser, context and page. It is
// created per scrape and must be closed on every exit path.
type Session struct {
	Page playwright.Page

	pw       *playwright.Playwright
	browser  playwright.Browser
	once     sync.Once
	closeErr error
}

// Launch starts a headless chromium session. Cancelling ctx closes the
// session, which aborts any browser call still in flight.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	s := &Session{pw: pw}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	browserCtx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(opts.UserAgent),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(opts.Cookies) > 0 {
		if err := browserCtx.AddCookies(opts.Cookies); err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}

	s.Page, err = browserCtx.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("could not create new page: %w", err)
	}

	context.AfterFunc(ctx, func() { s.Close() })
	return s, nil
}

// Close tears down the browser and the driver. Safe to call more than once.
func (s *Session) Close() error {
	s.once.Do(func() {
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				s.closeErr = fmt.Errorf("close browser: %w", err)
			}
		}
		if s.pw != nil {
			if err := s.pw.Stop(); err != nil && s.closeErr == nil {
				s.closeErr = fmt.Errorf("stop playwright: %w", err)
			}
		}
	})
	return s.closeErr
}

// Install downloads the chromium build playwright needs.
func Install() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}
