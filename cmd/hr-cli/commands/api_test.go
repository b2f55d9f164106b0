package commands

import (
	"context"
	"encoding/json"
	"hrtools/lib/scrapers/horsereality/core"
	"hrtools/lib/scrapers/horsereality/view"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeHorses map[int]view.Horse

func (f fakeHorses) GetHorse(ctx context.Context, lifenumber int) (view.Horse, error) {
	horse, ok := f[lifenumber]
	if !ok {
		return view.Horse{}, &core.Error{Kind: core.ErrNotFound, URL: view.HorsePath(lifenumber)}
	}
	return horse, nil
}

type fakeSession struct {
	state       core.State
	rolloverErr error
	rollovers   int
}

func (f *fakeSession) State() core.State {
	return f.state
}

func (f *fakeSession) Rollover(ctx context.Context) error {
	f.rollovers++
	return f.rolloverErr
}

func serve(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestApiHorse(t *testing.T) {
	handler := newApiHandler(fakeHorses{7: {Lifenumber: 7, Name: "Seven"}}, &fakeSession{})

	rec := serve(t, handler, http.MethodGet, "/horses/7")
	require.Equal(t, http.StatusOK, rec.Code)
	var horse view.Horse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &horse))
	require.Equal(t, "Seven", horse.Name)

	rec = serve(t, handler, http.MethodGet, "/horses/8")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, handler, http.MethodGet, "/horses/abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApiState(t *testing.T) {
	until := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	session := &fakeSession{state: core.State{Kind: core.StateCooldown, Until: until, Generation: 3}}
	handler := newApiHandler(fakeHorses{}, session)

	rec := serve(t, handler, http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, rec.Code)
	var res stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, core.StateCooldown.String(), res.State)
	require.Equal(t, uint64(3), res.Generation)
	require.NotNil(t, res.Until)
	require.True(t, until.Equal(*res.Until))
}

func TestApiRollover(t *testing.T) {
	session := &fakeSession{}
	handler := newApiHandler(fakeHorses{}, session)

	rec := serve(t, handler, http.MethodPost, "/rollover")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, session.rollovers)

	session.rolloverErr = &core.Error{Kind: core.ErrRolloverRequired, Gate: "https://example.test/daily-rollover"}
	rec = serve(t, handler, http.MethodPost, "/rollover")
	require.Equal(t, http.StatusConflict, rec.Code)
	var res errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "https://example.test/daily-rollover", res.Gate)

	rec = serve(t, handler, http.MethodGet, "/rollover")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestErrorStatus(t *testing.T) {
	require.Equal(t, http.StatusServiceUnavailable, errorStatus(&core.Error{Kind: core.ErrNotInitialized}))
	require.Equal(t, http.StatusServiceUnavailable, errorStatus(&core.Error{Kind: core.ErrRateLimited}))
	require.Equal(t, http.StatusUnauthorized, errorStatus(&core.Error{Kind: core.ErrAuthenticationFailed}))
	require.Equal(t, http.StatusBadGateway, errorStatus(&core.Error{Kind: core.ErrServerError}))
}

func TestRedact(t *testing.T) {
	require.Equal(t, "****", redact("abcd"))
	require.Equal(t, "abcd**ghij", redact("abcdefghij"))
}

func TestParseLifenumber(t *testing.T) {
	n, err := parseLifenumber("#123")
	require.NoError(t, err)
	require.Equal(t, 123, n)

	n, err = parseLifenumber("https://v2.horsereality.com/horses/456/")
	require.NoError(t, err)
	require.Equal(t, 456, n)

	_, err = parseLifenumber("nope")
	require.Error(t, err)

	_, err = parseLifenumber("https://v2.horsereality.com/market")
	require.ErrorContains(t, err, "not a horse page")
}
