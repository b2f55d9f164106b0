package core

import (
	"context"
	"errors"
	"fmt"
	"hrtools/lib/chrono"
	"hrtools/lib/restyutil"
	"hrtools/lib/telemetry"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// SessionCookie is set by the token exchange once the login succeeded.
const SessionCookie = "horsereality"

// errLimiterDeadline is returned when the caller's deadline ends before the
// rate limiter would admit the request.
var errLimiterDeadline = errors.New("rate limiter wait exceeds the caller deadline")

type AuthStateKind int

const (
	StateUninitialized AuthStateKind = iota
	StateAuthenticated
	StateCooldown
)

func (k AuthStateKind) String() string {
	switch k {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthenticated:
		return "authenticated"
	case StateCooldown:
		return "cooldown"
	}
	return "unknown"
}

// State is a snapshot of the authentication state of a client.
type State struct {
	Kind AuthStateKind
	// Until is the end of the cooldown, only set for StateCooldown.
	Until time.Time
	// Generation counts the sessions opened so far.
	Generation uint64
}

type snapshot struct {
	state      AuthStateKind
	until      time.Time
	session    *resty.Client
	generation uint64
}

// sessionManager owns the session. Transitions (login, rollover,
// invalidation) hold `lock` for their whole duration so that only one runs
// at a time, the fields themselves are guarded by `mu` and only ever
// written once a transition has its result.
type sessionManager struct {
	credential      RememberCredential
	hosts           resolvedHosts
	allowUnverified bool
	cooldown        time.Duration
	timeout         time.Duration
	clock           chrono.API
	limiter         *rate.Limiter
	output          restyutil.InstrumentOutput

	lock chan struct{}

	mu         sync.RWMutex
	state      AuthStateKind
	until      time.Time
	session    *resty.Client
	generation uint64
}

func newSessionManager(opts ClientOptions, hosts resolvedHosts) *sessionManager {
	return &sessionManager{
		credential:      opts.Credential,
		hosts:           hosts,
		allowUnverified: opts.AllowUnverified,
		cooldown:        opts.Cooldown,
		timeout:         opts.Timeout,
		clock:           opts.Clock,
		limiter:         rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		output:          opts.InstrumentOutput,
		lock:            make(chan struct{}, 1),
	}
}

func (m *sessionManager) acquire(ctx context.Context) error {
	select {
	case m.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *sessionManager) release() {
	<-m.lock
}

func (m *sessionManager) snapshot() snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot{
		state:      m.state,
		until:      m.until,
		session:    m.session,
		generation: m.generation,
	}
}

func (m *sessionManager) State() State {
	snap := m.snapshot()
	if snap.state == StateCooldown && !m.clock.Now().Before(snap.until) {
		return State{Kind: StateUninitialized, Generation: snap.generation}
	}
	out := State{Kind: snap.state, Generation: snap.generation}
	if snap.state == StateCooldown {
		out.Until = snap.until
	}
	return out
}

// cooldownError returns ErrNotInitialized while the cooldown is running.
func (m *sessionManager) cooldownError(snap snapshot) error {
	if snap.state != StateCooldown {
		return nil
	}
	if !m.clock.Now().Before(snap.until) {
		return nil
	}
	return &Error{Kind: ErrNotInitialized, Until: snap.until}
}

func (m *sessionManager) newSession() (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", userAgent())
	// redirects carry meaning on this site, they are inspected and never followed
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	telemetry.InstrumentResty(client, "hrtools.horsereality.http")
	restyutil.InstrumentClient(client, m.output)

	return client, nil
}

func closeSession(session *resty.Client) {
	if session != nil {
		session.GetClient().CloseIdleConnections()
	}
}

// install replaces the current session with `session` and bumps the
// generation, the previous session is closed.
func (m *sessionManager) install(session *resty.Client, state AuthStateKind) {
	m.mu.Lock()
	previous := m.session
	m.session = session
	m.state = state
	m.until = time.Time{}
	m.generation++
	m.mu.Unlock()

	if previous != nil && previous != session {
		closeSession(previous)
	}
}

// send waits for the rate limiter and issues a single request on `session`
// bounded by `timeout`, a zero timeout uses the manager's default. The
// timeout only covers the request itself.
func (m *sessionManager) send(
	ctx context.Context,
	session *resty.Client,
	method, target string,
	timeout time.Duration,
	prepare func(*resty.Request),
) (*resty.Response, error) {
	err := m.limiter.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, errLimiterDeadline)
	}

	if timeout <= 0 {
		timeout = m.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := session.R().SetContext(ctx)
	if prepare != nil {
		prepare(req)
	}
	return req.Execute(method, target)
}

// ensure returns a snapshot with a live session, opening and logging in one
// if there is none.
func (m *sessionManager) ensure(ctx context.Context, autoRollover bool) (snapshot, error) {
	snap := m.snapshot()
	if err := m.cooldownError(snap); err != nil {
		return snap, err
	}
	if snap.session != nil {
		return snap, nil
	}

	err := m.acquire(ctx)
	if err != nil {
		return snap, err
	}
	defer m.release()

	// someone else may have finished a transition while we waited
	snap = m.snapshot()
	if err := m.cooldownError(snap); err != nil {
		return snap, err
	}
	if snap.session != nil {
		return snap, nil
	}

	err = m.initializeLocked(ctx, autoRollover)
	if err != nil {
		return m.snapshot(), err
	}
	return m.snapshot(), nil
}

// initialize logs in unless the client is already authenticated.
func (m *sessionManager) initialize(ctx context.Context, autoRollover bool) error {
	err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer m.release()

	snap := m.snapshot()
	if err := m.cooldownError(snap); err != nil {
		return err
	}
	if snap.state == StateAuthenticated && snap.session != nil {
		return nil
	}
	return m.initializeLocked(ctx, autoRollover)
}

// reauthenticate replaces the session that was current at `seenGeneration`
// with a freshly logged in one. When another caller already replaced it,
// this returns right away and the caller retries on the new session.
func (m *sessionManager) reauthenticate(ctx context.Context, seenGeneration uint64, autoRollover bool) error {
	err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer m.release()

	snap := m.snapshot()
	if err := m.cooldownError(snap); err != nil {
		return err
	}
	if snap.generation != seenGeneration && snap.session != nil {
		slog.DebugContext(ctx, "session already replaced", "seen", seenGeneration, "current", snap.generation)
		return nil
	}
	return m.initializeLocked(ctx, autoRollover)
}

// initializeLocked opens a new session and performs the login handshake,
// the caller must hold the lock. A rollover gate met during login is
// completed once when `autoRollover` is set.
func (m *sessionManager) initializeLocked(ctx context.Context, autoRollover bool) error {
	ctx, span := tracer.Start(ctx, "session:initialize")
	defer span.End()

	for try := 0; ; try++ {
		session, err := m.newSession()
		if err != nil {
			span.SetStatus(codes.Error, "failed to create session")
			return err
		}

		gate, err := m.login(ctx, session)
		if err == nil && gate == "" {
			m.install(session, StateAuthenticated)
			loginCounter.Add(ctx, 1)
			slog.InfoContext(ctx, "logged in", "credential", m.credential.Name, "generation", m.snapshot().generation)
			return nil
		}

		if gate != "" {
			if !autoRollover || try > 0 {
				closeSession(session)
				span.SetStatus(codes.Error, "rollover required")
				return &Error{
					Kind:   ErrRolloverRequired,
					Method: http.MethodGet,
					URL:    m.loginUrl(),
					Gate:   gate,
				}
			}
			err = m.performRollover(ctx, session, gate)
			closeSession(session)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "rollover during login failed")
				if errors.Is(err, ErrRateLimited) {
					m.invalidateLocked(ctx, "rate limited during rollover")
				}
				return err
			}
			continue
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		switch {
		case errors.Is(err, ErrAuthenticationFailed) && m.allowUnverified:
			m.install(session, StateUninitialized)
			slog.WarnContext(ctx, "continuing without a verified session", "err", err)
			return nil
		case errors.Is(err, ErrAuthenticationFailed), errors.Is(err, ErrRateLimited):
			closeSession(session)
			m.invalidateLocked(ctx, err.Error())
			return err
		}
		closeSession(session)
		return err
	}
}

func (m *sessionManager) loginUrl() string {
	return m.hosts.url(true, LoginPath)
}

// login presents the remember credential to the login endpoint and follows
// the one redirect it answers with to receive the session cookie. A non
// empty gate means the site wants the daily rollover done first.
func (m *sessionManager) login(ctx context.Context, session *resty.Client) (gate string, err error) {
	loginUrl := m.loginUrl()

	res, err := m.send(ctx, session, http.MethodGet, loginUrl, 0, func(req *resty.Request) {
		req.SetCookie(m.credential.cookie())
	})
	if err != nil {
		return "", transportError(http.MethodGet, loginUrl, err)
	}

	status := res.StatusCode()
	if err := statusError(http.MethodGet, loginUrl, status); err != nil {
		return "", err
	}
	if !isRedirect(status) {
		return "", &Error{
			Kind:   ErrAuthenticationFailed,
			Method: http.MethodGet,
			URL:    loginUrl,
			Status: status,
			Err:    fmt.Errorf("credential %s was not accepted", m.credential),
		}
	}

	target, err := resolveUrl(loginUrl, res.Header().Get("Location"))
	if err != nil {
		return "", &Error{Kind: ErrAuthenticationFailed, Method: http.MethodGet, URL: loginUrl, Status: status, Err: err}
	}
	if isRolloverPath(target) {
		return target, nil
	}
	if pathOf(target) == LoginPath {
		return "", &Error{
			Kind:   ErrAuthenticationFailed,
			Method: http.MethodGet,
			URL:    loginUrl,
			Status: status,
			Err:    fmt.Errorf("redirected back to login"),
		}
	}

	// token exchange, whatever url the site hands out is used as is
	res, err = m.send(ctx, session, http.MethodGet, target, 0, nil)
	if err != nil {
		return "", transportError(http.MethodGet, target, err)
	}
	status = res.StatusCode()
	if err := statusError(http.MethodGet, target, status); err != nil {
		return "", err
	}
	if status >= 400 {
		return "", &Error{Kind: ErrAuthenticationFailed, Method: http.MethodGet, URL: target, Status: status}
	}
	if isRedirect(status) {
		next, err := resolveUrl(target, res.Header().Get("Location"))
		if err == nil && isRolloverPath(next) {
			return next, nil
		}
	}
	if !hasCookie(res, SessionCookie) {
		return "", &Error{
			Kind:   ErrAuthenticationFailed,
			Method: http.MethodGet,
			URL:    target,
			Status: status,
			Err:    fmt.Errorf("token exchange did not set the %s cookie", SessionCookie),
		}
	}
	return "", nil
}

func hasCookie(res *resty.Response, name string) bool {
	for _, cookie := range res.Cookies() {
		if cookie.Name == name && cookie.Value != "" {
			return true
		}
	}
	return false
}

// invalidate closes the session and refuses new logins until the cooldown
// has passed. When `ctx` ends while a transition holds the lock the session
// is left to that transition.
func (m *sessionManager) invalidate(ctx context.Context, reason string) {
	err := m.acquire(ctx)
	if err != nil {
		slog.WarnContext(ctx, "session not invalidated", "reason", reason, "err", err)
		return
	}
	defer m.release()
	m.invalidateLocked(ctx, reason)
}

func (m *sessionManager) invalidateLocked(ctx context.Context, reason string) {
	until := m.clock.Now().Add(m.cooldown)

	m.mu.Lock()
	previous := m.session
	m.session = nil
	m.state = StateCooldown
	m.until = until
	m.mu.Unlock()

	closeSession(previous)
	invalidationCounter.Add(ctx, 1)
	slog.WarnContext(ctx, "session invalidated", "reason", reason, "until", until)
}

// close drops the session without a cooldown.
func (m *sessionManager) close() {
	m.lock <- struct{}{}
	defer m.release()

	m.mu.Lock()
	previous := m.session
	m.session = nil
	m.state = StateUninitialized
	m.until = time.Time{}
	m.mu.Unlock()

	closeSession(previous)
}

func resolveUrl(base, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("redirect without a location")
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refUrl, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return baseUrl.ResolveReference(refUrl).String(), nil
}
