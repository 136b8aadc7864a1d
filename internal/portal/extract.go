package portal

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// resultRowSelectors locate bond rows in the search results, most
// specific first. The portal has shuffled its table markup before, so
// the generic fallback stays last.
var resultRowSelectors = []string{
	"#lista tbody tr",
	"table.dataTable tbody tr",
	".resultado table tbody tr",
	"table tbody tr",
}

// mainContentSelectors narrow the detail page down to the area that
// carries the bond history.
var mainContentSelectors = []string{
	"main",
	".conteudo-principal",
	"#conteudo",
}

// challengeMarkers identify anti-automation interstitials. Matching is
// case-insensitive over the rendered text plus iframe sources.
var challengeMarkers = []string{
	"hcaptcha",
	"recaptcha",
	"radware",
	"acesso negado",
	"access denied",
	"request unsuccessful",
}

const notFoundMarker = "nenhum registro encontrado"

// retirementDateRe captures the date token following the retirement
// date label on the detail page. The capture is loose on purpose: a
// malformed token is parsed (and dropped) later, keeping the bond.
var retirementDateRe = regexp.MustCompile(`(?i)data\s+d[ae]\s+aposentadoria\s*:?\s*([0-9/]+)`)

// resultRow is one search-result table row before it becomes a Bond.
type resultRow struct {
	role      string
	status    string
	detailURL string
}

// detectSource classifies a rendered page into one of the known
// shapes. The second return is false while the page matches nothing
// yet, which callers treat as "still rendering".
func detectSource(html string) (pageShape, *goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return shapeUnknown, nil, false
	}

	text := strings.ToLower(doc.Text())
	haystack := text
	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			haystack += " " + strings.ToLower(src)
		}
	})

	for _, marker := range challengeMarkers {
		if strings.Contains(haystack, marker) {
			return shapeChallenge, doc, true
		}
	}
	if strings.Contains(text, notFoundMarker) {
		return shapeNotFound, doc, true
	}
	if findResultRows(doc).Length() > 0 {
		return shapeResults, doc, true
	}
	return shapeUnknown, doc, false
}

type pageShape int

const (
	shapeUnknown pageShape = iota
	shapeResults
	shapeNotFound
	shapeChallenge
)

// findResultRows returns the first non-empty row selection.
func findResultRows(doc *goquery.Document) *goquery.Selection {
	for _, selector := range resultRowSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find(resultRowSelectors[0])
}

// knownStatusLabels helps locate the status column when the table has
// fewer columns than the full selection.
var knownStatusLabels = []string{
	"aposentado",
	"ativo",
	"inativo",
	"pensionista",
	"instituidor",
}

// parseResultRows extracts the bond rows from a results page. Header
// rows and rows without cells are skipped. The expected column order
// follows the pre-selected columns in the search URL:
// detail link, tipo, cpf, nome, órgão, matrícula, situação, função,
// cargo, quantidade.
func parseResultRows(doc *goquery.Document) []resultRow {
	var rows []resultRow
	findResultRows(doc).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(td.Text()))
		})

		r := resultRow{}
		if href, ok := tr.Find("a[href]").First().Attr("href"); ok {
			r.detailURL = href
		}

		if len(texts) >= 9 {
			r.status = texts[6]
			r.role = texts[8]
			if r.role == "" {
				r.role = texts[1]
			}
		} else {
			// Degraded layout: find the status cell by label, use the
			// first non-empty cell as the role.
			for _, t := range texts {
				if r.status == "" && matchesKnownStatus(t) {
					r.status = t
				}
				if r.role == "" && t != "" {
					r.role = t
				}
			}
		}

		if r.role == "" && r.status == "" {
			return
		}
		rows = append(rows, r)
	})
	return rows
}

func matchesKnownStatus(text string) bool {
	lower := strings.ToLower(text)
	for _, label := range knownStatusLabels {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}

// parseRetirementDates scans the detail page's main content for
// retirement date labels and returns the raw tokens in document order.
func parseRetirementDates(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	content := doc.Selection
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	matches := retirementDateRe.FindAllStringSubmatch(content.Text(), -1)
	dates := make([]string, 0, len(matches))
	for _, m := range matches {
		dates = append(dates, m[1])
	}
	return dates
}
