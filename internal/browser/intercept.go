package browser

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// blockedResourceTypes lists subresource types dropped to cut latency
// and bandwidth; none of them carry the data we extract.
var blockedResourceTypes = map[network.ResourceType]bool{
	network.ResourceTypeImage:      true,
	network.ResourceTypeMedia:      true,
	network.ResourceTypeFont:       true,
	network.ResourceTypeStylesheet: true,
	network.ResourceTypeManifest:   true,
	network.ResourceTypeWebSocket:  true,
}

// blockedDomains are analytics/tracking hosts the portal embeds.
var blockedDomains = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"facebook.net",
	"doubleclick.net",
	"hotjar.com",
	"clarity.ms",
}

// shouldBlock decides whether a paused request is dropped.
func shouldBlock(resourceType network.ResourceType, url string) bool {
	if blockedResourceTypes[resourceType] {
		return true
	}
	lower := strings.ToLower(url)
	for _, domain := range blockedDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// wireInterception routes paused requests (blocking non-essential
// subresources) and answers proxy authentication challenges. Handlers
// run in goroutines: CDP event callbacks must not block.
func (m *Manager) wireInterception(tabCtx context.Context) {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				execCtx := executorFor(tabCtx)
				if shouldBlock(e.ResourceType, e.Request.URL) {
					_ = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
					return
				}
				_ = fetch.ContinueRequest(e.RequestID).Do(execCtx)
			}()
		case *fetch.EventAuthRequired:
			go func() {
				execCtx := executorFor(tabCtx)
				resp := &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseDefault,
				}
				if e.AuthChallenge != nil && e.AuthChallenge.Source == fetch.AuthChallengeSourceProxy &&
					m.cfg.ProxyUsername != "" && m.cfg.ProxyPassword != "" {
					resp = &fetch.AuthChallengeResponse{
						Response: fetch.AuthChallengeResponseResponseProvideCredentials,
						Username: m.cfg.ProxyUsername,
						Password: m.cfg.ProxyPassword,
					}
				}
				_ = fetch.ContinueWithAuth(e.RequestID, resp).Do(execCtx)
			}()
		}
	})
}

// executorFor resolves the tab's CDP executor at event time. Listeners
// are wired before the tab's first Run, when no target is attached
// yet, so the executor cannot be captured at wiring time.
func executorFor(tabCtx context.Context) context.Context {
	c := chromedp.FromContext(tabCtx)
	return cdp.WithExecutor(tabCtx, c.Target)
}
