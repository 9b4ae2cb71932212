package session

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

const navigateRetries = 3

type playwrightPage struct {
	page playwright.Page
}

// NewPlaywrightPage adapts a playwright page to the Page capability.
func NewPlaywrightPage(page playwright.Page) Page {
	return &playwrightPage{page: page}
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	var lastErr error

	for i := 0; i < navigateRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * time.Second):
			}
		}

		_, err := p.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(30000),
		})
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("failed after %d retries: %w", navigateRetries, lastErr)
}

func (p *playwrightPage) FindAll(selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}

	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{el: h})
	}
	return elements, nil
}

func (p *playwrightPage) RawMarkup() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Title() (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) CurrentURL() string {
	return p.page.URL()
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

type playwrightElement struct {
	el playwright.ElementHandle
}

func (e *playwrightElement) Text() (string, error) {
	return e.el.TextContent()
}

func (e *playwrightElement) Attribute(name string) (string, error) {
	return e.el.GetAttribute(name)
}

func (e *playwrightElement) Click() error {
	return e.el.Click()
}

func (e *playwrightElement) Fill(value string) error {
	return e.el.Fill(value)
}

func (e *playwrightElement) Press(key string) error {
	return e.el.Press(key)
}
