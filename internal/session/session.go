package session

import (
	"context"
	"time"
)

// Element is a handle to a rendered DOM element.
type Element interface {
	Text() (string, error)
	// Attribute returns the attribute value, or "" when the attribute is
	// absent.
	Attribute(name string) (string, error)
	Click() error
	// Fill clears the element and types the given value into it.
	Fill(value string) error
	Press(key string) error
}

// Page is the capability the extraction core consumes from the rendering
// engine: navigate, query the DOM, read rendered markup. Implementations are
// single-writer; one logical flow drives a Page at a time.
type Page interface {
	Navigate(ctx context.Context, url string) error
	FindAll(selector string) ([]Element, error)
	RawMarkup() (string, error)
	Title() (string, error)
	CurrentURL() string
	Close() error
}

// Condition is a predicate over the current page state, polled by WaitFor.
type Condition func(p Page) bool

const pollInterval = 250 * time.Millisecond

// WaitFor polls cond until it holds, the timeout elapses, or the context is
// cancelled. Every wait in the pipeline is bounded through here.
func WaitFor(ctx context.Context, p Page, cond Condition, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond(p) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
		}
	}
}

// Session is one authenticated-or-anonymous browsing context bound to a single
// rendering engine page. The batch orchestrator owns it exclusively and
// releases it exactly once; every other component receives it by reference and
// must not close it.
type Session struct {
	Page          Page
	Authenticated bool
}

func New(p Page) *Session {
	return &Session{Page: p}
}

func (s *Session) Close() error {
	if s.Page == nil {
		return nil
	}
	return s.Page.Close()
}
