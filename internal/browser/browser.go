// Package browser owns the shared headless Chrome instance and hands
// out per-request navigation sessions.
package browser

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"transparencia-rpa/internal/observability"
)

// userAgent is sent instead of the headless Chrome default, which the
// portal's defenses flag.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// stealthScript hides the webdriver marker from the portal's
// automation checks before any page script runs.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// Config holds the browser-level settings consumed from the
// environment. Proxy credentials only apply when Server is set.
type Config struct {
	ProxyServer   string
	ProxyUsername string
	ProxyPassword string
	ChromePath    string
}

// Manager owns one long-lived Chrome process, launched lazily on the
// first Acquire and reused across requests; each session is a fresh
// tab on that process. The portal exposes a single navigable surface,
// so sessions are serialized through a weighted semaphore: concurrent
// callers queue rather than share a navigation context.
type Manager struct {
	cfg  Config
	log  *zap.Logger
	slot *semaphore.Weighted

	mu            sync.Mutex
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	started       bool
}

// NewManager creates a manager. No browser process is started until
// the first Acquire.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	return &Manager{
		cfg:  cfg,
		log:  log,
		slot: semaphore.NewWeighted(1),
	}
}

// Acquire returns a ready session holding the navigation slot. It
// blocks until the slot is free or ctx is done. The caller must call
// Release, including on timeout, so queued requests can proceed.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	if err := m.slot.Acquire(ctx, 1); err != nil {
		return nil, &InitError{Message: "waiting for navigation slot", Cause: err}
	}

	browserCtx, err := m.browser()
	if err != nil {
		m.slot.Release(1)
		return nil, &InitError{Message: "launching browser", Cause: err}
	}

	// A tab on the shared browser: canceling it closes the tab only,
	// never the process.
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	sess := &Session{
		ctx:     tabCtx,
		cancel:  tabCancel,
		browser: browserCtx,
		release: func() { m.slot.Release(1) },
	}

	m.wireInterception(tabCtx)

	if err := chromedp.Run(tabCtx, m.bootstrap()...); err != nil {
		sess.Release()
		m.Recycle()
		return nil, &InitError{Message: "starting browser session", Cause: err}
	}
	return sess, nil
}

// Started reports whether the shared browser process is up.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started && m.browserCtx != nil && m.browserCtx.Err() == nil
}

// Recycle tears down the current browser process so the next Acquire
// launches a fresh one. Called after fatal session errors. A no-op
// when no browser is up.
func (m *Manager) Recycle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCancel == nil && m.allocCancel == nil {
		return
	}
	m.closeLocked()
	observability.SessionRestarts.Inc()
	m.log.Warn("browser session recycled")
}

// Shutdown closes the browser process. The manager is not reusable
// afterwards except through the normal lazy recreation path.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCancel == nil && m.allocCancel == nil {
		return
	}
	m.closeLocked()
	m.log.Info("browser shut down")
}

// closeLocked cancels the browser and allocator contexts. Caller must
// hold mu.
func (m *Manager) closeLocked() {
	if m.browserCancel != nil {
		m.browserCancel()
		m.browserCtx = nil
		m.browserCancel = nil
	}
	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCtx = nil
		m.allocCancel = nil
	}
	m.started = false
}

// browser returns the shared browser context, launching the process if
// needed. Tabs derive from this context; it is parented on
// context.Background so it outlives any request.
func (m *Manager) browser() (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browserCtx != nil && m.browserCtx.Err() == nil {
		return m.browserCtx, nil
	}
	m.closeLocked()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	if m.cfg.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(m.cfg.ProxyServer))
	}
	if m.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the launch, so a missing binary or a
	// bad proxy flag fails here instead of mid-lookup.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	m.allocCtx, m.allocCancel = allocCtx, allocCancel
	m.browserCtx, m.browserCancel = browserCtx, browserCancel
	m.started = true
	m.log.Info("browser launched", zap.Bool("proxy", m.cfg.ProxyServer != ""))
	return browserCtx, nil
}

// bootstrap prepares a fresh tab: request interception (with auth
// handling when the proxy needs credentials) and the stealth script.
func (m *Manager) bootstrap() []chromedp.Action {
	enable := fetch.Enable()
	if m.cfg.ProxyUsername != "" && m.cfg.ProxyPassword != "" {
		enable = enable.WithHandleAuthRequests(true)
	}

	return []chromedp.Action{
		enable,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
	}
}

// Session is one isolated navigation context (a browser tab) holding
// the shared navigation slot.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	browser context.Context
	release func()
	once    sync.Once
}

// Context returns the tab context used to drive navigation actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Fatal reports whether the underlying browser is gone, in which case
// the manager should be recycled. A crashed process cancels the
// browser context; a lost connection cancels the tab context. Only
// meaningful before Release.
func (s *Session) Fatal() bool {
	return s.browser.Err() != nil || s.ctx.Err() != nil
}

// Release closes the tab and frees the navigation slot. The shared
// browser stays up. Safe to call more than once.
func (s *Session) Release() {
	s.once.Do(func() {
		s.cancel()
		s.release()
	})
}
