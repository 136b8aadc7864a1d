package portal

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"transparencia-rpa/internal/bond"
)

const baseURL = "https://portaldatransparencia.gov.br"

// searchColumns pre-selects the result columns so the table layout is
// predictable. Same selection the portal UI would build interactively.
const searchColumns = "detalhar,tipo,cpf,nome,orgaoServidorLotacao,matricula,situacao,funcao,cargo,quantidade"

// Navigator drives one query against the portal. It holds no mutable
// state; the browser session it operates on arrives through the
// context of each call.
type Navigator struct {
	log          *zap.Logger
	timeout      time.Duration
	pollInterval time.Duration
}

// NewNavigator creates a navigator with the given bounded wait for
// page rendering.
func NewNavigator(timeout time.Duration, log *zap.Logger) *Navigator {
	return &Navigator{
		log:          log,
		timeout:      timeout,
		pollInterval: 500 * time.Millisecond,
	}
}

// searchURL builds the direct search URL with the CPF as a query
// parameter, skipping the search form entirely.
func searchURL(cpfDigits string) string {
	q := url.Values{}
	q.Set("paginacaoSimples", "true")
	q.Set("direcaoOrdenacao", "asc")
	q.Set("cpf", cpfDigits)
	q.Set("colunasSelecionadas", searchColumns)
	return baseURL + "/servidores/consulta?" + q.Encode()
}

// resultSource is one known portal page shape. Exactly one variant is
// selected by explicit marker matching; nothing is extracted by
// speculative attribute access.
type resultSource interface {
	bonds(ctx context.Context, n *Navigator) ([]bond.Bond, error)
}

// Lookup submits the identifier through the portal's search mechanism
// and extracts the rendered bond list. Zero results yield an empty
// list, not an error. No retries happen here; retry policy belongs to
// the caller.
func (n *Navigator) Lookup(ctx context.Context, cpfDigits string) ([]bond.Bond, error) {
	nctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := chromedp.Run(nctx,
		chromedp.Navigate(searchURL(cpfDigits)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return nil, navErr(nctx, err, "opening search page")
	}

	n.dismissCookieBanner(nctx)

	src, err := n.waitForSource(nctx)
	if err != nil {
		return nil, err
	}
	return src.bonds(nctx, n)
}

// waitForSource polls the rendered page until it matches a known shape
// or the deadline passes. Polling replaces fixed sleeps: slow renders
// succeed as soon as the markers appear.
func (n *Navigator) waitForSource(ctx context.Context) (resultSource, error) {
	for {
		var html string
		if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
			return nil, navErr(ctx, err, "reading rendered page")
		}

		shape, doc, ok := detectSource(html)
		if ok {
			switch shape {
			case shapeResults:
				return &resultsPage{doc: doc}, nil
			case shapeNotFound:
				return notFoundPage{}, nil
			case shapeChallenge:
				return challengePage{}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, waitErr(ctx)
		case <-time.After(n.pollInterval):
		}
	}
}

// dismissCookieBanner clicks the consent button if one shows up.
// Non-blocking: the lookup proceeds either way.
func (n *Navigator) dismissCookieBanner(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := chromedp.Run(cctx,
		chromedp.Click(`.cc-btn.cc-dismiss, button[id*="accept"]`, chromedp.ByQuery, chromedp.NodeVisible),
	); err != nil {
		n.log.Debug("no cookie banner dismissed")
	}
}

// resultsPage is the normal layout: a table with one row per bond.
type resultsPage struct {
	doc *goquery.Document
}

func (p *resultsPage) bonds(ctx context.Context, n *Navigator) ([]bond.Bond, error) {
	rows := parseResultRows(p.doc)
	if len(rows) == 0 {
		return nil, &NavError{Kind: KindStructure, Message: "result rows did not match expected table layout"}
	}

	bonds := make([]bond.Bond, 0, len(rows))
	var retired []int
	detailURL := ""
	for i, r := range rows {
		bonds = append(bonds, bond.Bond{Role: r.role, Status: r.status})
		if bond.StatusIndicatesRetirement(r.status) {
			retired = append(retired, i)
			if detailURL == "" && r.detailURL != "" {
				detailURL = r.detailURL
			}
		}
	}

	if len(retired) > 0 && detailURL != "" {
		dates, err := n.fetchRetirementDates(ctx, detailURL)
		if err != nil {
			return nil, err
		}
		// History entries render in the same order as the bond rows.
		// A malformed entry stays nil and the bond is kept dateless.
		for j, idx := range retired {
			if j < len(dates) {
				bonds[idx].RetirementDate = dates[j]
			}
		}
	}
	return bonds, nil
}

// notFoundPage is the portal's generic "no records" layout.
type notFoundPage struct{}

func (notFoundPage) bonds(context.Context, *Navigator) ([]bond.Bond, error) {
	return []bond.Bond{}, nil
}

// challengePage is an anti-automation interstitial.
type challengePage struct{}

func (challengePage) bonds(context.Context, *Navigator) ([]bond.Bond, error) {
	return nil, &NavError{Kind: KindChallenge, Message: "anti-automation challenge detected"}
}

// fetchRetirementDates opens the servant's detail page, expands the
// bond history section and collects the retirement dates it exposes.
func (n *Navigator) fetchRetirementDates(ctx context.Context, href string) ([]*time.Time, error) {
	var html string
	if err := chromedp.Run(ctx,
		chromedp.Navigate(resolveURL(href)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return nil, navErr(ctx, err, "opening detail page")
	}

	n.expandBondHistory(ctx)

	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, navErr(ctx, err, "reading detail page")
	}

	raw := parseRetirementDates(html)
	dates := make([]*time.Time, len(raw))
	for i, s := range raw {
		dates[i] = bond.ParseDate(s)
	}
	return dates, nil
}

// expandBondHistory clicks the collapsed history accordion. Best
// effort: some renderings ship it pre-expanded.
func (n *Navigator) expandBondHistory(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(cctx,
		chromedp.Click(`Histórico dos vínculos`, chromedp.BySearch),
		chromedp.Sleep(500*time.Millisecond),
	); err != nil {
		n.log.Debug("bond history section not expanded")
	}
}

func resolveURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}

// navErr maps a chromedp failure to a navigation error. Deadline
// expiry is a timeout, caller cancellation is surfaced as such, and
// anything else is treated as a page-structure mismatch. The
// underlying error is deliberately not carried: it can embed the
// navigated URL, which contains the identifier.
func navErr(ctx context.Context, err error, stage string) *NavError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &NavError{Kind: KindTimeout, Message: stage + ": deadline exceeded"}
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return &NavError{Kind: KindCanceled, Message: stage + ": canceled by caller"}
	}
	return &NavError{Kind: KindStructure, Message: stage + ": browser action failed"}
}

// waitErr maps an expired render wait to a navigation error, keeping
// caller cancellation apart from a genuine render timeout.
func waitErr(ctx context.Context) *NavError {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &NavError{Kind: KindCanceled, Message: "lookup canceled before results rendered"}
	}
	return &NavError{Kind: KindTimeout, Message: "results did not render before deadline"}
}
