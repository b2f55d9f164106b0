package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		location    string
		requestPath string
		expected    OutcomeKind
	}{
		{"ok", 200, "", "/horses/1", OutcomeSuccess},
		{"not found status", 404, "", "/horses/1", OutcomeNotFound},
		{"soft not found", 302, "https://www.horsereality.com/error-404", "/horses/1", OutcomeNotFound},
		{"soft not found relative", 302, "/error-404/", "/horses/1", OutcomeNotFound},
		{"rollover gate", 302, "https://v2.horsereality.com/daily-rollover", "/horses/1", OutcomeRolloverRequired},
		{"gate to itself", 302, "/daily-rollover", "/daily-rollover", OutcomeUnauthenticated},
		{"login", 302, "https://v2.horsereality.com/login", "/horses/1", OutcomeUnauthenticated},
		{"see other", 303, "/", "/horses/1", OutcomeUnauthenticated},
		{"forbidden", 403, "", "/horses/1", OutcomeRateLimited},
		{"too many", 429, "", "/horses/1", OutcomeRateLimited},
		{"server error", 502, "", "/horses/1", OutcomeServerError},
		{"location ignored without redirect", 200, "/error-404", "/horses/1", OutcomeSuccess},
		{"other client error", 410, "", "/horses/1", OutcomeSuccess},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			outcome := Classify(test.status, test.location, test.requestPath)
			require.Equal(t, test.expected, outcome.Kind, outcome.Kind.String())
			require.Equal(t, test.status, outcome.Status)
		})
	}
}

func TestClassifyKeepsTarget(t *testing.T) {
	outcome := Classify(302, "/daily-rollover", "/horses/1")
	require.Equal(t, "/daily-rollover", outcome.Target)

	outcome = Classify(200, "/daily-rollover", "/horses/1")
	require.Empty(t, outcome.Target)
}

func TestIsImage(t *testing.T) {
	require.True(t, IsImage("image/png"))
	require.True(t, IsImage("IMAGE/jpeg; q=1"))
	require.False(t, IsImage("text/html; charset=utf-8"))
	require.False(t, IsImage(""))
}

func TestErrorMatchesKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&Error{Kind: ErrServerError, Method: "GET", URL: "https://x/y", Err: cause})
	require.ErrorIs(t, err, ErrServerError)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrRateLimited)
	require.Contains(t, err.Error(), "GET https://x/y")

	until := time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	err = &Error{Kind: ErrNotInitialized, Until: until}
	require.Contains(t, err.Error(), "2024-01-01T00:01:00Z")
}

func TestRolloverGate(t *testing.T) {
	gate, ok := RolloverGate(&Error{Kind: ErrRolloverRequired, Gate: "https://v2/daily-rollover"})
	require.True(t, ok)
	require.Equal(t, "https://v2/daily-rollover", gate)

	_, ok = RolloverGate(&Error{Kind: ErrNotFound})
	require.False(t, ok)
	_, ok = RolloverGate(errors.New("plain"))
	require.False(t, ok)
}

func TestStatusError(t *testing.T) {
	require.ErrorIs(t, statusError("GET", "/", 403), ErrRateLimited)
	require.ErrorIs(t, statusError("GET", "/", 429), ErrRateLimited)
	require.ErrorIs(t, statusError("GET", "/", 500), ErrServerError)
	require.NoError(t, statusError("GET", "/", 302))
	require.NoError(t, statusError("GET", "/", 401))
}

func TestCredential(t *testing.T) {
	require.Error(t, RememberCredential{}.Validate())
	require.Error(t, RememberCredential{Name: "remember"}.Validate())

	cred := RememberCredential{Name: "remember", Value: "secret"}
	require.NoError(t, cred.Validate())
	require.NotContains(t, cred.String(), "secret")

	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
}

func TestHostsUrl(t *testing.T) {
	hosts, err := Hosts{Www: "https://www.example.com/", V2: "https://v2.example.com"}.resolve()
	require.NoError(t, err)
	require.Equal(t, "https://www.example.com/horses/1/", hosts.url(false, "/horses/1/"))
	require.Equal(t, "https://v2.example.com/login", hosts.url(true, "login"))
	require.Equal(t, "https://elsewhere/a.png", hosts.url(false, "https://elsewhere/a.png"))

	defaults, err := Hosts{}.resolve()
	require.NoError(t, err)
	require.Equal(t, "https://www.horsereality.com/", defaults.url(false, "/"))
}
