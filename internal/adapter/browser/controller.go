package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/usecase"
)

// Selectors on the bank's login page and dashboard. The page structure
// is assumed stable; a missing element is a hard error, not something to
// retry around.
const (
	usernameField   = "#username"
	passwordField   = "#password"
	loginButton     = "#kc-login"
	postLoginMarker = ".user-context-menu-info__container__name"

	// frameQuality is the JPEG quality of telemetry frames. Low on
	// purpose: the feed exists for human supervision, not archiving.
	frameQuality = 50
)

// Config holds the browser controller's parameters.
type Config struct {
	// DashboardURL is the bank's logged-in landing page; unauthenticated
	// visits redirect to the login form.
	DashboardURL string

	// CookieName and CookieDomain locate the bank's own auth-token
	// cookie in the session's cookie jar.
	CookieName   string
	CookieDomain string

	UserAgent string
	Headless  bool

	// PageWait bounds the wait for the username field to render.
	PageWait time.Duration

	// MarkerWait is the short post-submit wait for the post-login
	// marker. Missing it is not a failure: the bank may be asking for
	// an out-of-band one-time passcode.
	MarkerWait time.Duration

	// OTPWait is the long re-wait for the same marker while the user
	// completes the passcode. Exceeding it is a hard login timeout.
	OTPWait time.Duration
}

// Controller launches isolated headless-browser sessions. It implements
// usecase.BrowserFactory. Each run gets a fresh browser instance and
// browsing context: credentials and cookies never survive a run.
type Controller struct {
	cfg    Config
	logger zerolog.Logger
}

// NewController creates a browser session factory.
func NewController(cfg Config, logger zerolog.Logger) *Controller {
	return &Controller{cfg: cfg, logger: logger}
}

// NewSession launches a browser bound to ctx: cancelling ctx tears the
// whole browser process down.
func (c *Controller) NewSession(ctx context.Context) (usecase.BrowserSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(c.cfg.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so launch failures surface here
	// and not in the middle of the login flow.
	if err := chromedp.Run(pageCtx); err != nil {
		pageCancel()
		allocCancel()
		return nil, err
	}

	c.logger.Info().Msg("browser session started")
	return &session{
		cfg:         c.cfg,
		ctx:         pageCtx,
		pageCancel:  pageCancel,
		allocCancel: allocCancel,
		logger:      c.logger,
	}, nil
}

type session struct {
	cfg         Config
	ctx         context.Context
	pageCancel  context.CancelFunc
	allocCancel context.CancelFunc
	logger      zerolog.Logger
}

// Login drives the bank's login form and waits out the post-login
// marker with the dual-timeout pattern described in Config.
func (s *session) Login(ctx context.Context, username, password string, onOTPWait func()) error {
	s.logger.Info().Msg("navigating to dashboard")

	formCtx, cancel := context.WithTimeout(s.ctx, s.cfg.PageWait)
	defer cancel()

	err := chromedp.Run(formCtx,
		chromedp.Navigate(s.cfg.DashboardURL),
		chromedp.WaitVisible(usernameField, chromedp.ByQuery),
		chromedp.SendKeys(usernameField, username, chromedp.ByQuery),
		chromedp.Click(passwordField, chromedp.ByQuery),
		chromedp.SendKeys(passwordField, password, chromedp.ByQuery),
		chromedp.Click(loginButton, chromedp.ByQuery),
	)
	if err != nil {
		return s.classify(err)
	}

	s.logger.Info().Msg("waiting for login completion (OTP or dashboard load)")

	if err := s.waitMarker(s.cfg.MarkerWait); err == nil {
		return nil
	} else if !errors.Is(err, context.DeadlineExceeded) {
		return s.classify(err)
	}

	// The marker did not attach within the short bound: the bank is
	// likely asking for a one-time passcode. Re-wait with the long bound.
	onOTPWait()
	s.logger.Info().Msg("waiting for one-time passcode")

	if err := s.waitMarker(s.cfg.OTPWait); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ErrLoginTimeout
		}
		return s.classify(err)
	}
	return nil
}

func (s *session) waitMarker(bound time.Duration) error {
	waitCtx, cancel := context.WithTimeout(s.ctx, bound)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitReady(postLoginMarker, chromedp.ByQuery))
}

// BearerToken reads the bank's auth-token cookie from the authenticated
// context. Its absence after a reported-successful login signals a
// silent structural change upstream.
func (s *session) BearerToken(ctx context.Context) (string, error) {
	var cookies []*network.Cookie
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return "", s.classify(err)
	}

	for _, cookie := range cookies {
		if cookie.Name == s.cfg.CookieName && cookie.Domain == s.cfg.CookieDomain {
			return cookie.Value, nil
		}
	}
	return "", domain.ErrTokenNotFound
}

// CaptureFrame grabs a low-quality JPEG still of the current page.
func (s *session) CaptureFrame(ctx context.Context) ([]byte, error) {
	var frame []byte
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		frame, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(frameQuality).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, s.classify(err)
	}
	return frame, nil
}

// Alive reports whether the page handle is still usable.
func (s *session) Alive() bool {
	return s.ctx.Err() == nil
}

// Close releases the page, the browsing context and the browser process.
// Each is released independently: a failure to close one never prevents
// releasing the next.
func (s *session) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.pageCancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// classify converts driver errors into the sync error taxonomy: a
// cancelled or torn-down session is teardown noise, not a failure.
func (s *session) classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case s.ctx.Err() != nil && !errors.Is(err, context.DeadlineExceeded):
		return domain.ErrSessionClosed
	default:
		return err
	}
}
