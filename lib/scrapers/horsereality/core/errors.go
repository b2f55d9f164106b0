package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotInitialized means there is no live session and none may be created
	// right now because the client is cooling down after a failure.
	ErrNotInitialized = errors.New("horsereality: client not initialized")
	// ErrNotFound means the page does not exist, the site signals this with a
	// redirect to its error page as often as with a 404.
	ErrNotFound = errors.New("horsereality: page not found")
	// ErrRolloverRequired means the daily rollover gate blocks access, the
	// gate url is carried by the *Error.
	ErrRolloverRequired     = errors.New("horsereality: daily rollover required")
	ErrAuthenticationFailed = errors.New("horsereality: authentication failed")
	ErrRateLimited          = errors.New("horsereality: rate limited")
	ErrServerError          = errors.New("horsereality: server error")
	ErrRetryBudgetExceeded  = errors.New("horsereality: retry budget exceeded")
	ErrExtractionFailed     = errors.New("horsereality: extraction failed")
)

// Error is the failure type returned by every operation of the client,
// errors.Is matches it against its Kind and, if set, Err.
type Error struct {
	// Kind is one of the Err* sentinels of this package.
	Kind   error
	Method string
	URL    string
	// Status is the upstream status code, zero when no response was read.
	Status int
	// Gate is the rollover page to complete when Kind is ErrRolloverRequired.
	Gate string
	// Until is the end of the cooldown when Kind is ErrNotInitialized.
	Until time.Time
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.URL != "" {
		b.WriteString(": ")
		if e.Method != "" {
			b.WriteString(e.Method)
			b.WriteString(" ")
		}
		b.WriteString(e.URL)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Gate != "" {
		fmt.Fprintf(&b, ", complete it at %s", e.Gate)
	}
	if !e.Until.IsZero() {
		fmt.Fprintf(&b, ", cooling down until %s", e.Until.Format(time.RFC3339))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RolloverGate returns the url of the rollover page when err says one must
// be completed.
func RolloverGate(err error) (string, bool) {
	var e *Error
	if !errors.As(err, &e) || !errors.Is(e.Kind, ErrRolloverRequired) {
		return "", false
	}
	return e.Gate, e.Gate != ""
}

// statusError maps the status codes that are failures everywhere on the
// site, it returns nil for any other status.
func statusError(method, url string, status int) error {
	switch {
	case status == 403 || status == 429:
		return &Error{Kind: ErrRateLimited, Method: method, URL: url, Status: status}
	case status >= 500:
		return &Error{Kind: ErrServerError, Method: method, URL: url, Status: status}
	}
	return nil
}

func transportError(method, url string, err error) error {
	return &Error{Kind: ErrServerError, Method: method, URL: url, Err: err}
}
