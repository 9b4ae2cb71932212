package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/salesops/giftware-scraper/internal/session"
)

// Credentials is the wholesale-account login, held in memory only for the
// authenticator's lifetime.
type Credentials struct {
	Email    string
	Password string
}

// Outcome reports whether the login flow succeeded; a false Success carries a
// machine-readable reason. Both failure modes are recoverable: the batch
// proceeds anonymously and pricing degrades to its sentinel.
type Outcome struct {
	Success bool
	Reason  string
}

const (
	// ReasonTimeout: credentials were submitted but no post-login signal
	// appeared within the verification window.
	ReasonTimeout = "timeout"
	// ReasonFormNotFound: the locator cascades exhausted without resolving
	// the login form.
	ReasonFormNotFound = "form-not-found"
)

type Options struct {
	LoginURLs []string
	// FormTimeout bounds the wait for the login form per candidate URL.
	FormTimeout time.Duration
	// VerifyTimeout bounds the wait for a post-login signal after submit.
	VerifyTimeout time.Duration
}

func DefaultOptions(baseURL string) Options {
	return Options{
		LoginURLs: []string{
			baseURL + "/pages/login",
			baseURL + "/login",
		},
		FormTimeout:   12 * time.Second,
		VerifyTimeout: 20 * time.Second,
	}
}

// The login form is client-rendered and its element ids are not stable across
// deployments. Locators are tried in fixed priority order: the id scheme
// observed on the current form, the semantic input type, the name attribute,
// then a generic text input. First structural match wins; no scoring.
var emailSelectors = []string{
	"#mui-2",
	"input[type='email']",
	"input[name='email']",
	"input[type='text']",
}

var passwordSelectors = []string{
	"#mui-3",
	"input[type='password']",
	"input[name='password']",
	"#password",
}

// Authenticator drives the login flow for a session.
type Authenticator struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		opts:   opts,
		logger: logger.With("component", "auth"),
	}
}

// Authenticate logs the session in. On success it marks the session
// authenticated; on any failure the session keeps its prior anonymous state.
func (a *Authenticator) Authenticate(ctx context.Context, sess *session.Session, creds Credentials) Outcome {
	p := sess.Page

	var emailEl session.Element
	for _, url := range a.opts.LoginURLs {
		if err := p.Navigate(ctx, url); err != nil {
			a.logger.Warn("login page navigation failed", "url", url, "error", err)
			continue
		}

		found := session.WaitFor(ctx, p, func(p session.Page) bool {
			emailEl = resolveFirst(p, emailSelectors)
			return emailEl != nil
		}, a.opts.FormTimeout)
		if found {
			break
		}
		emailEl = nil
	}

	if emailEl == nil {
		a.logger.Warn("login form not found on any login URL")
		return Outcome{Reason: ReasonFormNotFound}
	}

	passwordEl := resolveFirst(p, passwordSelectors)
	if passwordEl == nil {
		a.logger.Warn("password field not found")
		return Outcome{Reason: ReasonFormNotFound}
	}

	// Fill clears any prefill before typing.
	if err := emailEl.Fill(creds.Email); err != nil {
		a.logger.Warn("failed to enter email", "error", err)
		return Outcome{Reason: ReasonFormNotFound}
	}
	if err := passwordEl.Fill(creds.Password); err != nil {
		a.logger.Warn("failed to enter password", "error", err)
		return Outcome{Reason: ReasonFormNotFound}
	}

	a.submit(p, passwordEl)

	if !session.WaitFor(ctx, p, loggedInSignal, a.opts.VerifyTimeout) {
		// A timed-out verification is a failed login, not an optimistic
		// success: the session stays anonymous.
		a.logger.Warn("no post-login signal before timeout")
		return Outcome{Reason: ReasonTimeout}
	}

	sess.Authenticated = true
	a.logger.Info("login verified")
	return Outcome{Success: true}
}

// submit activates the login control: a typed submit button, then a button
// whose visible text mentions login/sign in, then a generic submit input.
// When no control resolves, submitting the password field directly still
// posts the form.
func (a *Authenticator) submit(p session.Page, passwordEl session.Element) {
	if el := resolveFirst(p, []string{"button[type='submit']"}); el != nil {
		if el.Click() == nil {
			return
		}
	}

	if els, err := p.FindAll("button"); err == nil {
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			lower := strings.ToLower(text)
			if strings.Contains(lower, "login") || strings.Contains(lower, "log in") || strings.Contains(lower, "sign in") {
				if el.Click() == nil {
					return
				}
			}
		}
	}

	if el := resolveFirst(p, []string{"input[type='submit']"}); el != nil {
		if el.Click() == nil {
			return
		}
	}

	a.logger.Debug("no submit control found, submitting password field")
	if err := passwordEl.Press("Enter"); err != nil {
		a.logger.Warn("failed to submit password field", "error", err)
	}
}

var logoutMarkers = []string{"log out", "logout", "my account"}

// loggedInSignal holds when any one of three independent signals appears:
// the URL left the login path, a logout/account affordance exists, or a
// currency-marked element is visible (prices render only when logged in).
func loggedInSignal(p session.Page) bool {
	if cur := strings.ToLower(p.CurrentURL()); cur != "" && !strings.Contains(cur, "login") {
		return true
	}

	if els, err := p.FindAll("a, button"); err == nil {
		for _, el := range els {
			if text, err := el.Text(); err == nil && containsAnyFold(text, logoutMarkers) {
				return true
			}
		}
	}

	if els, err := p.FindAll("span"); err == nil {
		for _, el := range els {
			if text, err := el.Text(); err == nil && strings.Contains(text, "$") {
				return true
			}
		}
	}

	return false
}

func containsAnyFold(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// resolveFirst walks a locator cascade and returns the first element any
// selector resolves, or nil when the cascade exhausts.
func resolveFirst(p session.Page, selectors []string) session.Element {
	for _, sel := range selectors {
		els, err := p.FindAll(sel)
		if err == nil && len(els) > 0 {
			return els[0]
		}
	}
	return nil
}
