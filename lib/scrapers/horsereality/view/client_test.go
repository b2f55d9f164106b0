package view

import (
	"context"
	"hrtools/lib/chrono"
	"hrtools/lib/scrapers/horsereality/core"
	"hrtools/lib/testutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type testSite struct {
	server    *httptest.Server
	horseHits atomic.Int32
}

func newTestSite(t *testing.T) *testSite {
	site := &testSite{}
	pages := map[string][]byte{
		"/horses/1001/": horsePage,
		"/horses/2001/": damPage,
		"/horses/2002/": foalPage,
		"/horses/404/":  alertPage,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/auth?v2_auth_token=exchange", http.StatusFound)
	})
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "horsereality", Value: "session", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/upload/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte(r.URL.Path))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("horsereality"); err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			http.Redirect(w, r, "/error-404", http.StatusFound)
			return
		}
		site.horseHits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)
	return site
}

func (s *testSite) coreClient(t *testing.T) *core.Client {
	client, err := core.NewClient(core.ClientOptions{
		Credential: core.RememberCredential{Name: "remember_web", Value: "value"},
		Hosts:      core.Hosts{Www: s.server.URL, V2: s.server.URL},
		RateLimit:  rate.Inf,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestGetHorseAndFoal(t *testing.T) {
	site := newTestSite(t)
	client := NewClient(site.coreClient(t), ClientOptions{})
	ctx := context.Background()

	dam, err := client.GetHorse(ctx, 2001)
	require.NoError(t, err)
	require.Equal(t, "Midnight Dam", dam.Name)

	foal, err := client.FetchFoal(ctx, dam)
	require.NoError(t, err)
	require.Equal(t, 2002, foal.Lifenumber)
	require.True(t, foal.IsFoal())

	_, err = client.FetchFoal(ctx, foal)
	require.ErrorIs(t, err, ErrNoFoal)
}

func TestGetHorseErrors(t *testing.T) {
	site := newTestSite(t)
	client := NewClient(site.coreClient(t), ClientOptions{})
	ctx := context.Background()

	_, err := client.GetHorse(ctx, 3)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = client.GetHorse(ctx, 404)
	var alert PageAlertError
	require.ErrorAs(t, err, &alert)
}

func TestGetHorseCached(t *testing.T) {
	site := newTestSite(t)
	clock := chrono.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, chrono.Location))
	res := testutil.SetupService(t, testutil.ServiceParams{
		Name:  "scrapers/horsereality/view",
		Cache: true,
	})
	client := NewClient(site.coreClient(t), ClientOptions{
		Cache:         res.Cache,
		CacheLifetime: time.Minute,
		Clock:         clock,
	})
	ctx := context.Background()

	first, err := client.GetHorse(ctx, 1001)
	require.NoError(t, err)
	second, err := client.GetHorse(ctx, 1001)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, site.horseHits.Load())

	clock.Advance(2 * time.Minute)
	_, err = client.GetHorse(ctx, 1001)
	require.NoError(t, err)
	require.EqualValues(t, 2, site.horseHits.Load())
}

func TestCacheHitKeepsExpiry(t *testing.T) {
	site := newTestSite(t)
	clock := chrono.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, chrono.Location))
	res := testutil.SetupService(t, testutil.ServiceParams{
		Name:  "scrapers/horsereality/view",
		Cache: true,
	})
	client := NewClient(site.coreClient(t), ClientOptions{
		Cache:         res.Cache,
		CacheLifetime: time.Minute,
		Clock:         clock,
	})
	ctx := context.Background()

	_, err := client.GetHorse(ctx, 1001)
	require.NoError(t, err)
	clock.Advance(40 * time.Second)
	_, err = client.GetHorse(ctx, 1001)
	require.NoError(t, err)
	require.EqualValues(t, 1, site.horseHits.Load())

	clock.Advance(40 * time.Second)
	_, err = client.GetHorse(ctx, 1001)
	require.NoError(t, err)
	require.EqualValues(t, 2, site.horseHits.Load())
}

func TestCreateAndReadLayer(t *testing.T) {
	site := newTestSite(t)
	client := NewClient(site.coreClient(t), ClientOptions{})
	ctx := context.Background()

	layer, err := client.CreateLayer(site.server.URL + "/upload/colours/mares/body/large/abc.png")
	require.NoError(t, err)
	require.Equal(t, "abc", layer.ID)

	layer, err = client.CreateLayer("https://www.horsereality.com/upload/colours/mares/body/large/abc.png")
	require.NoError(t, err)

	data, err := client.ReadLayer(ctx, layer, SizeSmall)
	require.NoError(t, err)
	require.Equal(t, "/upload/colours/mares/body/small/abc.png", string(data))

	_, err = client.CreateLayer("https://example.com/upload/colours/mares/body/large/abc.png")
	require.Error(t, err)
}
