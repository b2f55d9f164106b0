package core

import (
	"fmt"
	"hrtools/lib/chrono"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

const (
	rememberName  = "remember_web_test"
	rememberValue = "good-credential"
	sessionCookie = "horsereality"
	rolloverToken = "rollover-token"
)

const loginPage = `<html><body><form method="POST" action="/login">
<input type="hidden" name="_token" value="login-token">
<input name="email"><input name="password" type="password">
</form></body></html>`

const rolloverPage = `<html><body>
<form method="POST" action="/daily-rollover">
<input type="hidden" name="_token" value="rollover-token">
<button type="submit">Continue</button>
</form></body></html>`

// fakeSite imitates the parts of Horse Reality the client relies on.
type fakeSite struct {
	t      *testing.T
	server *httptest.Server

	mu              sync.Mutex
	validSession    string
	sessionCounter  int
	rolloverPending bool
	loginDelay      time.Duration
	slowLogins      int
	slowLoginDelay  time.Duration
	withholdCookie  bool
	rolloverHtml    string
	// pageHandler, when set, answers page requests of authenticated clients.
	pageHandler func(w http.ResponseWriter, r *http.Request) bool

	logins          atomic.Int32
	pageHits        atomic.Int32
	rolloverPosts   atomic.Int32
	rolloverGets    atomic.Int32
	inFlightLogins  atomic.Int32
	maxInFlightSeen atomic.Int32
}

func newFakeSite(t *testing.T) *fakeSite {
	site := &fakeSite{t: t, rolloverHtml: rolloverPage}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", site.handleLogin)
	mux.HandleFunc("/auth", site.handleAuth)
	mux.HandleFunc("/daily-rollover", site.handleRollover)
	mux.HandleFunc("/", site.handlePage)
	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)
	return site
}

func (s *fakeSite) hosts() Hosts {
	return Hosts{Www: s.server.URL, V2: s.server.URL}
}

func (s *fakeSite) options() ClientOptions {
	return ClientOptions{
		Credential: RememberCredential{Name: rememberName, Value: rememberValue},
		Hosts:      s.hosts(),
		RateLimit:  rate.Inf,
		Timeout:    2 * time.Second,
		Clock:      chrono.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, chrono.Location)),
	}
}

func (s *fakeSite) client(opts ClientOptions) *Client {
	client, err := NewClient(opts)
	if err != nil {
		s.t.Fatal(err)
	}
	s.t.Cleanup(client.Close)
	return client
}

// expireSessions logs out every client.
func (s *fakeSite) expireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validSession = ""
}

func (s *fakeSite) setRolloverPending(pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverPending = pending
}

func (s *fakeSite) setLoginDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginDelay = delay
}

// setSlowLogins delays only the next `n` logins.
func (s *fakeSite) setSlowLogins(n int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowLogins = n
	s.slowLoginDelay = delay
}

// setWithholdCookie makes the token exchange succeed without a session cookie.
func (s *fakeSite) setWithholdCookie(withhold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withholdCookie = withhold
}

func (s *fakeSite) setRolloverHtml(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverHtml = page
}

func (s *fakeSite) setPageHandler(handler func(w http.ResponseWriter, r *http.Request) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageHandler = handler
}

func (s *fakeSite) handleLogin(w http.ResponseWriter, r *http.Request) {
	current := s.inFlightLogins.Add(1)
	defer s.inFlightLogins.Add(-1)
	for {
		seen := s.maxInFlightSeen.Load()
		if current <= seen || s.maxInFlightSeen.CompareAndSwap(seen, current) {
			break
		}
	}
	s.logins.Add(1)

	s.mu.Lock()
	delay := s.loginDelay
	if s.slowLogins > 0 {
		s.slowLogins--
		delay = s.slowLoginDelay
	}
	pending := s.rolloverPending
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	cookie, err := r.Cookie(rememberName)
	if err != nil || cookie.Value != rememberValue {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, loginPage)
		return
	}
	if pending {
		http.Redirect(w, r, "/daily-rollover", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/auth?v2_auth_token=exchange", http.StatusFound)
}

func (s *fakeSite) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("v2_auth_token") != "exchange" {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	s.sessionCounter++
	s.validSession = fmt.Sprintf("session-%d", s.sessionCounter)
	value := s.validSession
	withhold := s.withholdCookie
	s.mu.Unlock()

	if !withhold {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: value, Path: "/"})
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *fakeSite) handleRollover(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pending := s.rolloverPending
	page := s.rolloverHtml
	s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		s.rolloverGets.Add(1)
		if !pending {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		fmt.Fprint(w, page)
	case http.MethodPost:
		s.rolloverPosts.Add(1)
		if r.FormValue("_token") != rolloverToken {
			http.Error(w, "token mismatch", http.StatusUnprocessableEntity)
			return
		}
		s.setRolloverPending(false)
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeSite) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validSession != "" && cookie.Value == s.validSession
}

func (s *fakeSite) handlePage(w http.ResponseWriter, r *http.Request) {
	s.pageHits.Add(1)

	if !s.authenticated(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	s.mu.Lock()
	pending := s.rolloverPending
	handler := s.pageHandler
	s.mu.Unlock()

	if pending {
		http.Redirect(w, r, "/daily-rollover", http.StatusFound)
		return
	}
	if handler != nil && handler(w, r) {
		return
	}
	if r.URL.Path == "/" {
		fmt.Fprint(w, "<html><body>stables</body></html>")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><body>page %s</body></html>", r.URL.Path)
}
