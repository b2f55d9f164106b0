package core

import (
	"bytes"
	"context"
	"errors"
	"hrtools/lib/htmlutil"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const rolloverTokenInput = "_token"

// performRollover completes the daily rollover page at `gate` on the given
// session. A gate that does not answer with the form means the rollover has
// already happened and nothing is done.
func (m *sessionManager) performRollover(ctx context.Context, session *resty.Client, gate string) error {
	ctx, span := tracer.Start(ctx, "rollover:perform")
	defer span.End()
	span.SetAttributes(attribute.String("gate", gate))

	res, err := m.send(ctx, session, http.MethodGet, gate, 0, nil)
	if err != nil {
		span.SetStatus(codes.Error, "fetch rollover page")
		return transportError(http.MethodGet, gate, err)
	}
	if err := statusError(http.MethodGet, gate, res.StatusCode()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if res.StatusCode() != http.StatusOK {
		slog.DebugContext(ctx, "rollover not pending", "gate", gate, "status", res.StatusCode())
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "parse rollover page")
		return &Error{Kind: ErrExtractionFailed, Method: http.MethodGet, URL: gate, Status: res.StatusCode(), Err: err}
	}
	token, err := htmlutil.HiddenInput(doc, rolloverTokenInput)
	if err != nil {
		span.SetStatus(codes.Error, "missing rollover token")
		return &Error{Kind: ErrExtractionFailed, Method: http.MethodGet, URL: gate, Status: res.StatusCode(), Err: err}
	}

	target := gate
	if action := htmlutil.FormAction(doc, rolloverTokenInput); action != "" {
		resolved, err := resolveUrl(gate, action)
		if err == nil {
			target = resolved
		}
	}

	res, err = m.send(ctx, session, http.MethodPost, target, 0, func(req *resty.Request) {
		req.SetFormData(map[string]string{rolloverTokenInput: token})
	})
	if err != nil {
		span.SetStatus(codes.Error, "submit rollover")
		return transportError(http.MethodPost, target, err)
	}
	if err := statusError(http.MethodPost, target, res.StatusCode()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, "rollover token rejected")
		return &Error{
			Kind:   ErrExtractionFailed,
			Method: http.MethodPost,
			URL:    target,
			Status: res.StatusCode(),
			Err:    errors.New("rollover token rejected"),
		}
	}

	rolloverCounter.Add(ctx, 1)
	slog.InfoContext(ctx, "completed daily rollover", "gate", gate)
	return nil
}

// rollover completes the gate on the current session, opening one first if
// needed.
func (m *sessionManager) rollover(ctx context.Context, gate string) error {
	err := m.acquire(ctx)
	if err != nil {
		return err
	}
	defer m.release()

	snap := m.snapshot()
	if err := m.cooldownError(snap); err != nil {
		return err
	}
	session := snap.session
	if session == nil {
		err = m.initializeLocked(ctx, true)
		if err != nil {
			return err
		}
		session = m.snapshot().session
		if session == nil {
			return &Error{Kind: ErrNotInitialized}
		}
	}

	err = m.performRollover(ctx, session, gate)
	if errors.Is(err, ErrRateLimited) {
		m.invalidateLocked(ctx, "rate limited during rollover")
	}
	return err
}
