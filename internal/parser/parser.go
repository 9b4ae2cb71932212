package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CatalogParser extracts product fields from rendered catalog markup. The
// vendor phrases the same facts several ways across the catalog, so each field
// carries an ordered list of patterns; the first match wins.
type CatalogParser struct {
	casePatterns  []casePattern
	pricePatterns []*regexp.Regexp
}

type casePattern struct {
	name string
	re   *regexp.Regexp
}

func NewCatalogParser() *CatalogParser {
	return &CatalogParser{
		casePatterns: []casePattern{
			{name: "case-code", re: regexp.MustCompile(`C/(\d+)`)},
			{name: "case-of", re: regexp.MustCompile(`(?i)case of (\d+)`)},
			{name: "pack-of", re: regexp.MustCompile(`(?i)pack of (\d+)`)},
			{name: "per-case", re: regexp.MustCompile(`(?i)(\d+) per case`)},
			{name: "quantity", re: regexp.MustCompile(`(?i)quantity[:\s]+(\d+)`)},
		},
		pricePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\$\d+\.\d{2}`),
			regexp.MustCompile(`(?i)price[:\s]*\$(\d+\.\d{2})`),
			regexp.MustCompile(`(?i)wholesale[:\s]*\$(\d+\.\d{2})`),
		},
	}
}

// ExtractCaseQuantity searches the rendered page text for a case quantity and
// returns the quantity with the name of the pattern that matched.
func (p *CatalogParser) ExtractCaseQuantity(html string) (string, string, error) {
	text, err := pageText(html)
	if err != nil {
		return "", "", err
	}

	for _, pat := range p.casePatterns {
		if m := pat.re.FindStringSubmatch(text); len(m) > 1 {
			return m[1], pat.name, nil
		}
	}

	return "", "", fmt.Errorf("case quantity not found")
}

// CaseQuantityFromText applies the case patterns to already-extracted text
// such as a product heading.
func (p *CatalogParser) CaseQuantityFromText(text string) (string, bool) {
	for _, pat := range p.casePatterns {
		if m := pat.re.FindStringSubmatch(text); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

// ExtractPrice searches the rendered page text for a currency-formatted price.
func (p *CatalogParser) ExtractPrice(html string) (string, error) {
	text, err := pageText(html)
	if err != nil {
		return "", err
	}

	for i, re := range p.pricePatterns {
		m := re.FindStringSubmatch(text)
		if len(m) == 0 {
			continue
		}
		if i == 0 {
			return m[0], nil
		}
		return "$" + m[1], nil
	}

	return "", fmt.Errorf("price not found")
}

// HeadingText returns the first non-empty content heading in the markup.
func (p *CatalogParser) HeadingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var heading string
	doc.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			heading = text
			return false
		}
		return true
	})

	if heading == "" {
		return "", fmt.Errorf("heading not found")
	}
	return heading, nil
}

// ProductNameFromTitle splits a page title on the vendor separator, e.g.
// "Ceramic Mug | Pacific Trading" -> "Ceramic Mug".
func ProductNameFromTitle(title string) string {
	name := title
	if i := strings.Index(title, " | "); i >= 0 {
		name = title[:i]
	}
	return strings.TrimSpace(name)
}

// pageText renders markup to visible text, dropping script and style contents
// so a "$" inside inline JavaScript cannot masquerade as a price.
func pageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style").Remove()
	return doc.Text(), nil
}
