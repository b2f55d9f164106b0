package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client is a Horse Reality client, it is safe for concurrent use and
// every caller shares one session.
type Client struct {
	autoRollover bool
	hosts        resolvedHosts
	sessions     *sessionManager
}

func NewClient(opts ClientOptions) (*Client, error) {
	err := opts.Credential.Validate()
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	hosts, err := opts.Hosts.resolve()
	if err != nil {
		return nil, err
	}
	return &Client{
		autoRollover: opts.AutoRollover,
		hosts:        hosts,
		sessions:     newSessionManager(opts, hosts),
	}, nil
}

type Response struct {
	Status int
	Body   []byte
	// Binary is true when the body is an image.
	Binary bool
	// Header is only set when WithHeaders was given.
	Header http.Header
	// Attempts is how many requests it took, including the successful one.
	Attempts int
}

func (r Response) Text() string {
	return string(r.Body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryable reports whether `err` is a request timeout that another attempt
// may get past, as opposed to the caller's own context running out.
func retryable(ctx context.Context, err error) bool {
	return ctx.Err() == nil && isTimeout(err) && !errors.Is(err, errLimiterDeadline)
}

// Fetch requests `path` on the site, logging in, re-authenticating and
// completing the rollover as needed. Relative paths are joined onto the
// www host (or v2 with WithV2).
func (c *Client) Fetch(ctx context.Context, method, path string, opts ...RequestOption) (Response, error) {
	var ropts requestOptions
	for _, o := range opts {
		o(&ropts)
	}
	target := c.hosts.url(ropts.v2, path)
	requestPath := pathOf(target)

	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("method", method),
		attribute.String("url", target),
	)

	res, err := c.fetch(ctx, method, target, requestPath, ropts)
	span.SetAttributes(attribute.Int("attempts", res.Attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (c *Client) fetch(ctx context.Context, method, target, requestPath string, ropts requestOptions) (Response, error) {
	var lastTimeout error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		snap, err := c.sessions.ensure(ctx, c.autoRollover)
		if err != nil {
			if retryable(ctx, err) {
				slog.WarnContext(ctx, "login timed out", "url", target, "attempt", attempt)
				lastTimeout = err
				continue
			}
			return Response{Attempts: attempt - 1}, err
		}

		attemptCounter.Add(ctx, 1)
		res, err := c.sessions.send(ctx, snap.session, method, target, ropts.timeout, func(req *resty.Request) {
			if len(ropts.headers) > 0 {
				req.SetHeaders(ropts.headers)
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				return Response{Attempts: attempt}, fmt.Errorf("fetch %s: %w", target, ctx.Err())
			}
			if errors.Is(err, errLimiterDeadline) {
				return Response{Attempts: attempt - 1}, fmt.Errorf("fetch %s: %w", target, err)
			}
			if retryable(ctx, err) {
				slog.WarnContext(ctx, "request timed out", "url", target, "attempt", attempt)
				lastTimeout = err
				continue
			}
			return Response{Attempts: attempt}, transportError(method, target, err)
		}
		lastTimeout = nil

		status := res.StatusCode()
		outcome := Classify(status, res.Header().Get("Location"), requestPath)
		slog.DebugContext(ctx, "classified response", "url", target, "attempt", attempt, "outcome", outcome.Kind.String())

		switch outcome.Kind {
		case OutcomeSuccess:
			out := Response{
				Status:   status,
				Body:     res.Body(),
				Binary:   IsImage(res.Header().Get("Content-Type")),
				Attempts: attempt,
			}
			if ropts.returnHeaders {
				out.Header = res.Header().Clone()
			}
			return out, nil
		case OutcomeNotFound:
			return Response{Status: status, Attempts: attempt}, &Error{
				Kind:   ErrNotFound,
				Method: method,
				URL:    target,
				Status: status,
			}
		case OutcomeRolloverRequired:
			gate, err := resolveUrl(target, outcome.Target)
			if err != nil {
				gate = c.hosts.url(true, RolloverPath)
			}
			if !c.autoRollover || attempt == MaxAttempts {
				return Response{Status: status, Attempts: attempt}, &Error{
					Kind:   ErrRolloverRequired,
					Method: method,
					URL:    target,
					Status: status,
					Gate:   gate,
				}
			}
			err = c.sessions.rollover(ctx, gate)
			if err != nil {
				if retryable(ctx, err) {
					slog.WarnContext(ctx, "rollover timed out", "gate", gate, "attempt", attempt)
					lastTimeout = err
					continue
				}
				return Response{Status: status, Attempts: attempt}, err
			}
		case OutcomeUnauthenticated:
			if attempt == MaxAttempts {
				return Response{Status: status, Attempts: attempt}, &Error{
					Kind:   ErrAuthenticationFailed,
					Method: method,
					URL:    target,
					Status: status,
					Err:    fmt.Errorf("re-authentication attempts exhausted"),
				}
			}
			err = c.sessions.reauthenticate(ctx, snap.generation, c.autoRollover)
			if err != nil {
				if retryable(ctx, err) {
					slog.WarnContext(ctx, "re-authentication timed out", "url", target, "attempt", attempt)
					lastTimeout = err
					continue
				}
				return Response{Status: status, Attempts: attempt}, err
			}
		case OutcomeRateLimited:
			c.sessions.invalidate(ctx, fmt.Sprintf("%s %s answered %d", method, target, status))
			return Response{Status: status, Attempts: attempt}, &Error{
				Kind:   ErrRateLimited,
				Method: method,
				URL:    target,
				Status: status,
			}
		case OutcomeServerError:
			return Response{Status: status, Attempts: attempt}, &Error{
				Kind:   ErrServerError,
				Method: method,
				URL:    target,
				Status: status,
			}
		}
	}

	if lastTimeout != nil {
		return Response{Attempts: MaxAttempts}, &Error{
			Kind:   ErrServerError,
			Method: method,
			URL:    target,
			Err:    lastTimeout,
		}
	}
	return Response{Attempts: MaxAttempts}, &Error{Kind: ErrRetryBudgetExceeded, Method: method, URL: target}
}

// Get is Fetch with GET.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (Response, error) {
	return c.Fetch(ctx, http.MethodGet, path, opts...)
}

// ReadLayer downloads an image layer through the session, `path` may be
// absolute or relative to the www host.
func (c *Client) ReadLayer(ctx context.Context, path string) ([]byte, error) {
	res, err := c.Fetch(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if !res.Binary {
		return nil, &Error{
			Kind:   ErrExtractionFailed,
			Method: http.MethodGet,
			URL:    c.hosts.url(false, path),
			Status: res.Status,
			Err:    fmt.Errorf("expected an image, got %d bytes of text", len(res.Body)),
		}
	}
	return res.Body, nil
}

// Verify logs in unless the client is already authenticated.
func (c *Client) Verify(ctx context.Context) error {
	return c.sessions.initialize(ctx, c.autoRollover)
}

// Rollover completes the daily rollover, it does nothing if it has already
// been done today.
func (c *Client) Rollover(ctx context.Context) error {
	return c.sessions.rollover(ctx, c.RolloverUrl())
}

func (c *Client) RolloverUrl() string {
	return c.hosts.url(true, RolloverPath)
}

// Url returns the absolute url Fetch would request for `path`.
func (c *Client) Url(path string, opts ...RequestOption) string {
	var ropts requestOptions
	for _, o := range opts {
		o(&ropts)
	}
	return c.hosts.url(ropts.v2, path)
}

// Host returns the www host, used to tell site urls from foreign ones.
func (c *Client) Host() *url.URL {
	u := *c.hosts.www
	return &u
}

func (c *Client) State() State {
	return c.sessions.State()
}

// Close drops the session, the client stays usable and logs in again on
// the next request.
func (c *Client) Close() {
	c.sessions.close()
}
