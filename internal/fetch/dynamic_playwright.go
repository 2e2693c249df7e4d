package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
)

// Resource types aborted in browser tabs; only the DOM is read.
var blockedResourceTypes = map[string]bool{
	"image":      true,
	"media":      true,
	"font":       true,
	"stylesheet": true,
}

type launcher interface {
	Launch(headless bool) (browser, error)
}

// browser owns the driver process; Close stops both.
type browser interface {
	NewTab(opts tabOptions) (tab, error)
	Close() error
}

type tabOptions struct {
	UserAgent string
	Headers   map[string]string
}

type tab interface {
	Block(resourceTypes map[string]bool) error
	Navigate(url string, timeout time.Duration) error
	WaitAttached(selector string, timeout time.Duration) error
	HTML() (string, error)
	Close() error
}

// playwrightLauncher installs the chromium driver once per process.
type playwrightLauncher struct {
	once       sync.Once
	installErr error
}

var chromium = &playwrightLauncher{}

func (l *playwrightLauncher) Launch(headless bool) (browser, error) {
	l.once.Do(func() {
		l.installErr = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
	})
	if l.installErr != nil {
		return nil, errors.Wrap(l.installErr, "install playwright")
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "start playwright")
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.Wrap(err, "launch chromium")
	}
	return &playwrightBrowser{pw: pw, browser: b}, nil
}

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (b *playwrightBrowser) NewTab(opts tabOptions) (tab, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if len(opts.Headers) > 0 {
		ctxOpts.ExtraHttpHeaders = opts.Headers
	}
	bctx, err := b.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, err
	}
	return &playwrightTab{ctx: bctx, page: page}, nil
}

func (b *playwrightBrowser) Close() error {
	err := b.browser.Close()
	if stopErr := b.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

type playwrightTab struct {
	ctx  playwright.BrowserContext
	page playwright.Page
}

func (t *playwrightTab) Block(resourceTypes map[string]bool) error {
	return t.page.Route("**/*", func(route playwright.Route) {
		if resourceTypes[route.Request().ResourceType()] {
			_ = route.Abort()
			return
		}
		_ = route.Continue()
	})
}

func (t *playwrightTab) Navigate(url string, timeout time.Duration) error {
	_, err := t.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (t *playwrightTab) WaitAttached(selector string, timeout time.Duration) error {
	return t.page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (t *playwrightTab) HTML() (string, error) {
	return t.page.Content()
}

func (t *playwrightTab) Close() error {
	return t.ctx.Close()
}

func fetchDynamic(ctx context.Context, opts Options) (string, error) {
	return fetchDynamicWith(ctx, opts, chromium)
}

// fetchDynamicWith renders opts.URL in a fresh headless tab and returns the
// DOM once it is loaded (and opts.WaitForSelector is attached, if set).
func fetchDynamicWith(ctx context.Context, opts Options, l launcher) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := l.Launch(opts.Headless)
	if err != nil {
		return "", err
	}
	defer func() { _ = b.Close() }()

	t, err := b.NewTab(tabOptions{UserAgent: opts.UserAgent, Headers: opts.Headers})
	if err != nil {
		return "", errors.Wrap(err, "open tab")
	}
	defer func() { _ = t.Close() }()

	if err := t.Block(blockedResourceTypes); err != nil {
		return "", errors.Wrap(err, "block resources")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := t.Navigate(opts.URL, opts.Timeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errors.Errorf("dynamic fetch of %s timed out after %s", opts.URL, opts.Timeout)
		}
		return "", errors.Wrapf(err, "navigate to %s", opts.URL)
	}
	if opts.WaitForSelector != "" {
		if err := t.WaitAttached(opts.WaitForSelector, opts.Timeout); err != nil {
			return "", errors.Wrapf(err, "waiting for %s", opts.WaitForSelector)
		}
	}
	return t.HTML()
}
