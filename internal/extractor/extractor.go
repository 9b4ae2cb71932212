package extractor

import (
	"log/slog"
	"strings"

	"github.com/salesops/giftware-scraper/internal/models"
	"github.com/salesops/giftware-scraper/internal/parser"
	"github.com/salesops/giftware-scraper/internal/session"
)

// The catalog renders this placeholder until its client-side app hydrates;
// anything equal to it is not a product name.
const loadingPlaceholder = "Loading..."

// Extractor applies an ordered cascade of extraction strategies per product
// field. The target markup is not under our control and changes without
// notice, so every value is best-effort: the first confident match wins and a
// fully exhausted cascade is a normal outcome, not an error.
type Extractor struct {
	parser *parser.CatalogParser
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		parser: parser.NewCatalogParser(),
		logger: logger.With("component", "extractor"),
	}
}

var headingSelectors = []string{
	"h1",
	".product-title",
	".product-name",
	"h2",
}

// Name extracts the product name. A visible, non-placeholder heading outranks
// the page-title split, which is the baseline.
func (e *Extractor) Name(p session.Page) (Result, error) {
	return firstMatch([]Rule{
		{Name: "heading", Extract: func() (string, bool, error) { return e.headingName(p) }},
		{Name: "title", Extract: func() (string, bool, error) { return titleName(p) }},
	})
}

func (e *Extractor) headingName(p session.Page) (string, bool, error) {
	for _, sel := range headingSelectors {
		els, err := p.FindAll(sel)
		if err != nil {
			return "", false, err
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if len(text) > 3 && text != loadingPlaceholder {
				return text, true, nil
			}
		}
	}
	return "", false, nil
}

func titleName(p session.Page) (string, bool, error) {
	title, err := p.Title()
	if err != nil {
		return "", false, err
	}

	name := parser.ProductNameFromTitle(title)
	if len(name) <= 3 || name == loadingPlaceholder {
		return "", false, nil
	}
	return name, true, nil
}

// Price selectors in descending specificity: the identifiers observed on the
// current storefront first, generic price classes after.
var priceSelectors = []string{
	"h5.MuiTypography-h5",
	".MuiTypography-h5",
	"[data-testid='price']",
	".product-price",
	".wholesale-price",
	".current-price",
	".price",
	".money",
	"span",
	"div",
}

// Prices for the cart, shipping estimates and promos also carry a currency
// marker; matches mentioning these are not the unit price.
var priceDisqualifiers = []string{"cart", "total", "shipping", "tax", "free"}

// Price extracts the unit price. Pricing is only rendered for authenticated
// sessions; an anonymous session reports the login-required sentinel without
// evaluating any rule.
func (e *Extractor) Price(p session.Page, sess *session.Session) (Result, error) {
	if !sess.Authenticated {
		return Result{Value: models.SentinelLoginRequired, Found: false, Source: "login-gate"}, nil
	}

	return firstMatch([]Rule{
		{Name: "price-element", Extract: func() (string, bool, error) { return e.priceElement(p) }},
		{Name: "price-pattern", Extract: func() (string, bool, error) { return e.pricePattern(p) }},
	})
}

func (e *Extractor) priceElement(p session.Page) (string, bool, error) {
	for _, sel := range priceSelectors {
		els, err := p.FindAll(sel)
		if err != nil {
			return "", false, err
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if !plausiblePrice(text) {
				continue
			}
			return text, true, nil
		}
	}
	return "", false, nil
}

func plausiblePrice(text string) bool {
	if !strings.Contains(text, "$") {
		return false
	}
	if len(text) < 3 || len(text) > 30 {
		return false
	}
	lower := strings.ToLower(text)
	for _, word := range priceDisqualifiers {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}

func (e *Extractor) pricePattern(p session.Page) (string, bool, error) {
	html, err := p.RawMarkup()
	if err != nil {
		return "", false, err
	}

	value, err := e.parser.ExtractPrice(html)
	if err != nil {
		return "", false, nil
	}
	return value, true, nil
}

// Elements whose text carries one of these markers hold the case-pack note.
var casePackMarkers = []string{"CASE PACK", "Case Pack", "case pack", "Pack:", "Quantity:"}

var casePackElementSelectors = "span, div, p, li, td"

// CaseQuantity extracts the units-per-case count: the vendor's textual
// phrasings over the full markup first, then a structural search for a
// case-pack note element.
func (e *Extractor) CaseQuantity(p session.Page) (Result, error) {
	return firstMatch([]Rule{
		{Name: "case-pattern", Extract: func() (string, bool, error) { return e.casePattern(p) }},
		{Name: "case-pack-element", Extract: func() (string, bool, error) { return e.casePackElement(p) }},
	})
}

func (e *Extractor) casePattern(p session.Page) (string, bool, error) {
	html, err := p.RawMarkup()
	if err != nil {
		return "", false, err
	}

	value, pattern, err := e.parser.ExtractCaseQuantity(html)
	if err != nil {
		return "", false, nil
	}
	e.logger.Debug("case quantity matched", "pattern", pattern, "value", value)
	return value, true, nil
}

func (e *Extractor) casePackElement(p session.Page) (string, bool, error) {
	els, err := p.FindAll(casePackElementSelectors)
	if err != nil {
		return "", false, err
	}

	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if !containsAny(text, casePackMarkers) {
			continue
		}
		if digits := firstNumber(text); digits != "" {
			return digits, true, nil
		}
	}
	return "", false, nil
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func firstNumber(text string) string {
	start := -1
	for i, r := range text {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return text[start:i]
		}
	}
	if start >= 0 {
		return text[start:]
	}
	return ""
}
