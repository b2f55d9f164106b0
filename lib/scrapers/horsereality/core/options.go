package core

import (
	"fmt"
	"hrtools/lib/chrono"
	"hrtools/lib/restyutil"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Version is reported to the site in the user agent.
const Version = "1.1.0"

const (
	MaxAttempts      = 5
	DefaultCooldown  = time.Minute
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = rate.Limit(2)
	DefaultRateBurst = 2
)

func userAgent() string {
	return fmt.Sprintf("hrtools/%s", Version)
}

// Hosts are the base urls of the two subdomains the site is served from,
// "www" serves horse pages and images while "v2" handles login.
type Hosts struct {
	Www string `json:"www"`
	V2  string `json:"v2"`
}

func DefaultHosts() Hosts {
	return Hosts{
		Www: "https://www.horsereality.com",
		V2:  "https://v2.horsereality.com",
	}
}

type resolvedHosts struct {
	www *url.URL
	v2  *url.URL
}

func (h Hosts) resolve() (resolvedHosts, error) {
	defaults := DefaultHosts()
	if h.Www == "" {
		h.Www = defaults.Www
	}
	if h.V2 == "" {
		h.V2 = defaults.V2
	}
	www, err := url.Parse(strings.TrimRight(h.Www, "/"))
	if err != nil {
		return resolvedHosts{}, fmt.Errorf("parse www host: %w", err)
	}
	v2, err := url.Parse(strings.TrimRight(h.V2, "/"))
	if err != nil {
		return resolvedHosts{}, fmt.Errorf("parse v2 host: %w", err)
	}
	return resolvedHosts{www: www, v2: v2}, nil
}

// url joins `path` onto the selected host, absolute urls are returned as is.
func (h resolvedHosts) url(v2 bool, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := h.www
	if v2 {
		base = h.v2
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base.String() + path
}

type ClientOptions struct {
	// Credential is required.
	Credential RememberCredential
	// AutoRollover completes the daily rollover whenever the site asks for it,
	// when false ErrRolloverRequired is returned instead.
	AutoRollover bool
	// AllowUnverified turns a rejected credential during initialization into
	// a soft no-op, useful to probe whether a credential is still valid.
	AllowUnverified bool

	// Cooldown is how long the client refuses to log in after the site
	// rejected it, defaults to DefaultCooldown.
	Cooldown time.Duration
	// Timeout bounds each network call, defaults to DefaultTimeout.
	Timeout time.Duration
	// RateLimit is the maximum requests per second over all sessions,
	// defaults to DefaultRateLimit. Use rate.Inf to disable.
	RateLimit rate.Limit
	RateBurst int

	Hosts Hosts
	// Clock defaults to chrono.StandardImpl.
	Clock chrono.API
	// InstrumentOutput, when set, receives a dump of every http exchange.
	InstrumentOutput restyutil.InstrumentOutput
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RateLimit == 0 {
		o.RateLimit = DefaultRateLimit
	}
	if o.RateBurst <= 0 {
		o.RateBurst = DefaultRateBurst
	}
	if o.Clock == nil {
		o.Clock = chrono.StandardImpl{}
	}
	return o
}

type requestOptions struct {
	v2            bool
	returnHeaders bool
	headers       map[string]string
	timeout       time.Duration
}

type RequestOption func(*requestOptions)

// WithV2 sends the request to the v2 subdomain.
func WithV2() RequestOption {
	return func(o *requestOptions) {
		o.v2 = true
	}
}

// WithHeaders makes the response carry its headers.
func WithHeaders() RequestOption {
	return func(o *requestOptions) {
		o.returnHeaders = true
	}
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithTimeout overrides ClientOptions.Timeout for every attempt of this call.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = timeout
	}
}
