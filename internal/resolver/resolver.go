package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/salesops/giftware-scraper/internal/session"
)

// ResolvedPage is the outcome of resolving one identifier: the page the
// session is left on, or Loaded=false when every candidate was exhausted.
type ResolvedPage struct {
	Identifier string
	URL        string
	Loaded     bool
}

// Cache remembers which URL served an identifier so later runs skip the
// candidate search.
type Cache interface {
	Get(ctx context.Context, identifier string) (string, bool)
	Put(ctx context.Context, identifier, url string)
}

type Options struct {
	BaseURL string
	// LoadTimeout bounds the wait for rendered content after navigation.
	LoadTimeout time.Duration
}

func DefaultOptions(baseURL string) Options {
	return Options{
		BaseURL:     baseURL,
		LoadTimeout: 10 * time.Second,
	}
}

// Two path conventions coexist for the same catalog; both are tried.
var pathTemplates = []string{"/product/%s", "/item/%s"}

// Identifier decorations seen in customer spreadsheets.
var decorationPrefixes = []string{"Y", "#"}

// Titles carrying these markers identify a dead page regardless of content.
var negativeTitleMarkers = []string{"not found", "error", "404"}

const loadingTitle = "Loading..."

// Resolver maps a raw item number to a working product page by trying a
// fixed, ordered list of candidate URLs. The search is deterministic and
// finite; it is not a crawl.
type Resolver struct {
	opts   Options
	cache  Cache
	logger *slog.Logger
}

func New(opts Options, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		opts:   opts,
		cache:  cache,
		logger: logger.With("component", "resolver"),
	}
}

// Normalize strips known non-numeric decoration from an item number: a
// leading hash mark and a single leading letter prefix ahead of a numeric
// core. The original identifier is kept for reporting.
func Normalize(raw string) string {
	id := strings.TrimSpace(raw)
	id = strings.TrimPrefix(id, "#")
	if len(id) > 1 && isLetter(id[0]) && allDigits(id[1:]) {
		id = id[1:]
	}
	return id
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Candidates builds the ordered candidate URLs for an identifier: each path
// template combined with the normalized form, the raw form, and each known
// decoration prefix applied to the normalized core.
func (r *Resolver) Candidates(raw string) []string {
	norm := Normalize(raw)
	forms := []string{norm}
	if trimmed := strings.TrimSpace(raw); trimmed != norm {
		forms = append(forms, trimmed)
	}
	for _, prefix := range decorationPrefixes {
		if f := prefix + norm; f != strings.TrimSpace(raw) {
			forms = append(forms, f)
		}
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, tpl := range pathTemplates {
		for _, form := range forms {
			u := r.opts.BaseURL + fmt.Sprintf(tpl, url.PathEscape(form))
			if !seen[u] {
				seen[u] = true
				candidates = append(candidates, u)
			}
		}
	}
	return candidates
}

// Resolve tries candidates in order and stops at the first valid product
// page. An exhausted candidate list is a normal NotFound outcome; an error is
// an engine fault.
func (r *Resolver) Resolve(ctx context.Context, sess *session.Session, raw string) (ResolvedPage, error) {
	p := sess.Page

	candidates := r.Candidates(raw)
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, raw); ok {
			candidates = append([]string{cached}, candidates...)
		}
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return ResolvedPage{Identifier: raw}, err
		}

		if err := p.Navigate(ctx, candidate); err != nil {
			return ResolvedPage{Identifier: raw}, fmt.Errorf("navigate %s: %w", candidate, err)
		}

		session.WaitFor(ctx, p, hasRenderedContent, r.opts.LoadTimeout)

		valid, err := r.validProductPage(p)
		if err != nil {
			return ResolvedPage{Identifier: raw}, err
		}
		if valid {
			r.logger.Debug("resolved item", "item", raw, "url", candidate)
			if r.cache != nil {
				r.cache.Put(ctx, raw, candidate)
			}
			return ResolvedPage{Identifier: raw, URL: candidate, Loaded: true}, nil
		}
	}

	r.logger.Debug("no candidate URL valid", "item", raw, "tried", len(candidates))
	return ResolvedPage{Identifier: raw}, nil
}

// hasRenderedContent reports whether the client-side app has hydrated: a real
// title or any content heading.
func hasRenderedContent(p session.Page) bool {
	if title, err := p.Title(); err == nil {
		title = strings.TrimSpace(title)
		if title != "" && title != loadingTitle {
			return true
		}
	}
	if els, err := p.FindAll("h1"); err == nil && len(els) > 0 {
		return true
	}
	return false
}

// validProductPage classifies the current page: the title must not carry a
// negative marker, and either the title or the DOM must hold a non-trivial
// content heading.
func (r *Resolver) validProductPage(p session.Page) (bool, error) {
	title, err := p.Title()
	if err != nil {
		return false, fmt.Errorf("read title: %w", err)
	}

	lower := strings.ToLower(title)
	for _, marker := range negativeTitleMarkers {
		if strings.Contains(lower, marker) {
			return false, nil
		}
	}

	if trimmed := strings.TrimSpace(title); len(trimmed) > 3 && trimmed != loadingTitle {
		return true, nil
	}

	els, err := p.FindAll("h1")
	if err != nil {
		return false, fmt.Errorf("query heading: %w", err)
	}
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(text)) > 3 {
			return true, nil
		}
	}

	return false, nil
}
