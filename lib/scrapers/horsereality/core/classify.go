package core

import (
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const (
	LoginPath     = "/login"
	RolloverPath  = "/daily-rollover"
	ErrorPagePath = "/error-404"
)

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeRolloverRequired
	OutcomeUnauthenticated
	OutcomeRateLimited
	OutcomeServerError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRolloverRequired:
		return "rollover_required"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeServerError:
		return "server_error"
	}
	return "unknown"
}

// Outcome is what a single attempt amounted to.
type Outcome struct {
	Kind   OutcomeKind
	Status int
	// Target is the raw Location of a redirect, if any.
	Target string
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

// pathOf returns the path of an absolute or relative url without its
// trailing slash, or the empty string if it can't be parsed.
func pathOf(rawUrl string) string {
	if rawUrl == "" {
		return ""
	}
	u, err := url.Parse(rawUrl)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return "/"
	}
	return p
}

func isRolloverPath(rawUrl string) bool {
	return pathOf(rawUrl) == RolloverPath
}

// Classify maps a raw response onto an Outcome, it has no side effects.
//
// `location` is only looked at for redirect statuses, `requestPath` is the
// path the request was made to.
func Classify(status int, location string, requestPath string) Outcome {
	target := ""
	if isRedirect(status) {
		target = location
	}
	targetPath := pathOf(target)

	switch {
	case targetPath == ErrorPagePath || status == http.StatusNotFound:
		return Outcome{Kind: OutcomeNotFound, Status: status, Target: target}
	case targetPath == RolloverPath && !isRolloverPath(requestPath):
		return Outcome{Kind: OutcomeRolloverRequired, Status: status, Target: target}
	case isRedirect(status):
		// the site sends logged out clients to /login
		return Outcome{Kind: OutcomeUnauthenticated, Status: status, Target: target}
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRateLimited, Status: status}
	case status >= 500:
		return Outcome{Kind: OutcomeServerError, Status: status}
	}
	return Outcome{Kind: OutcomeSuccess, Status: status}
}

// IsImage reports whether a body with this content type should be handled
// as binary.
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	primary, _, _ := strings.Cut(mediaType, "/")
	return strings.EqualFold(strings.TrimSpace(primary), "image")
}
