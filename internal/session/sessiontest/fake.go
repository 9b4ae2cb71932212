// Package sessiontest provides deterministic in-memory page fixtures for
// testing the extraction core without a rendering engine.
package sessiontest

import (
	"context"
	"sync"

	"github.com/salesops/giftware-scraper/internal/session"
)

// Element is a scripted DOM element.
type Element struct {
	TextValue string
	Attrs     map[string]string
	Err       error

	Clicked bool
	Filled  string
	Pressed []string

	// OnClick, when set, runs on Click; fixtures use it to simulate page
	// state changes such as a post-login redirect.
	OnClick func()
}

func (e *Element) Text() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.TextValue, nil
}

func (e *Element) Attribute(name string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Attrs[name], nil
}

func (e *Element) Click() error {
	if e.Err != nil {
		return e.Err
	}
	e.Clicked = true
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Fill(value string) error {
	if e.Err != nil {
		return e.Err
	}
	e.Filled = value
	return nil
}

func (e *Element) Press(key string) error {
	if e.Err != nil {
		return e.Err
	}
	e.Pressed = append(e.Pressed, key)
	return nil
}

// Fixture is the rendered state of one URL.
type Fixture struct {
	Title    string
	HTML     string
	Elements map[string][]*Element
}

// Page is a scripted session.Page over a URL -> Fixture map. Unknown URLs
// render as MissingFixture (a generic not-found page when nil).
type Page struct {
	mu sync.Mutex

	Fixtures       map[string]*Fixture
	MissingFixture *Fixture

	URL         string
	Navigations []string
	FindCalls   int
	Closed      int

	NavigateErr error
	QueryErr    error
}

var notFoundFixture = &Fixture{Title: "404 Not Found"}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Navigations = append(p.Navigations, url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.URL = url
	return nil
}

func (p *Page) current() *Fixture {
	if f, ok := p.Fixtures[p.URL]; ok {
		return f
	}
	if p.MissingFixture != nil {
		return p.MissingFixture
	}
	return notFoundFixture
}

func (p *Page) FindAll(selector string) ([]session.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.FindCalls++
	if p.QueryErr != nil {
		return nil, p.QueryErr
	}

	fixture := p.current()
	els := fixture.Elements[selector]
	out := make([]session.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

func (p *Page) RawMarkup() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.QueryErr != nil {
		return "", p.QueryErr
	}
	return p.current().HTML, nil
}

func (p *Page) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.QueryErr != nil {
		return "", p.QueryErr
	}
	return p.current().Title, nil
}

func (p *Page) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.URL
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed++
	return nil
}

// SetURL changes the page's current URL without a navigation, simulating a
// client-side redirect.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.URL = url
}
