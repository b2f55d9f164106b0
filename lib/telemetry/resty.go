package telemetry

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// response bodies larger than this are not attached to spans
const maxBodyAttribute = 4096

// headers carrying session material are never exported
var redactedHeaders = map[string]bool{
	"Cookie":     true,
	"Set-Cookie": true,
}

// InstrumentResty opens a span per request on the given client and
// closes it with the response (or error) attached.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method))
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func headerAttributes(prefix string, headers http.Header) []attribute.KeyValue {
	var out []attribute.KeyValue
	for header, values := range headers {
		if redactedHeaders[http.CanonicalHeaderKey(header)] {
			out = append(out, attribute.String(
				fmt.Sprintf("%s/header: %s", prefix, header),
				"<redacted>",
			))
			continue
		}
		out = append(out, attribute.String(
			fmt.Sprintf("%s/header: %s", prefix, header),
			strings.Join(values, ", "),
		))
	}
	return out
}

func bodyAttribute(res *resty.Response) attribute.KeyValue {
	contentType := res.Header().Get("Content-Type")
	if strings.HasPrefix(contentType, "image/") {
		return attribute.String("response/body", fmt.Sprintf("<%d bytes of %s>", len(res.Body()), contentType))
	}
	body := res.String()
	if len(body) > maxBodyAttribute {
		body = body[:maxBodyAttribute] + "..."
	}
	return attribute.String("response/body", body)
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	// request attributes are set here since res.Request.RawRequest is nil in OnBeforeRequest
	if res.Request.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	}
	span.SetAttributes(headerAttributes("request", res.Request.Header)...)
	span.SetAttributes(headerAttributes("response", res.Header())...)
	span.SetAttributes(bodyAttribute(res))

	if res.StatusCode() >= 500 {
		span.SetStatus(codes.Error, res.Status())
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(headerAttributes("request", req.Header)...)

	if req.RawRequest == nil {
		return
	}
	span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
}
