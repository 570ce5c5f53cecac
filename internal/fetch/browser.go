package fetch

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserClient renders pages in headless Chrome. The session cookies held in the
// jar are copied into the browser before every navigation, so pages that only
// render their tables through JavaScript can still be read after an HTTP login.
// Requires Chrome/Chromium to be installed on the system.
type BrowserClient struct {
	jar     http.CookieJar
	timeout time.Duration
	logger  *zap.Logger
}

// NewBrowserClient creates a browser-backed Getter.
func NewBrowserClient(jar http.CookieJar, timeout time.Duration, logger *zap.Logger) *BrowserClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserClient{jar: jar, timeout: timeout, logger: logger}
}

// Get navigates to the URL and returns the rendered HTML.
func (b *BrowserClient) Get(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	b.logger.Debug("starting headless browser", zap.String("url", urlStr))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	var html, location string
	err = chromedp.Run(browserCtx,
		b.setCookies(parsedURL),
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}

	b.logger.Debug("rendered page", zap.String("url", urlStr), zap.Int("bytes", len(html)))

	return &Result{
		URL:         urlStr,
		FinalURL:    location,
		HTML:        html,
		ContentType: "text/html",
		StatusCode:  http.StatusOK,
	}, nil
}

func (b *BrowserClient) setCookies(u *url.URL) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if b.jar == nil {
			return nil
		}
		for _, c := range b.jar.Cookies(u) {
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(u.Hostname()).
				WithPath("/").
				WithSecure(u.Scheme == "https").
				Do(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

var (
	_ Getter = (*Client)(nil)
	_ Getter = (*BrowserClient)(nil)
)
