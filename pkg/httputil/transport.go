package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/gritea/pkg/observability"
)

// DefaultTimeout bounds a single request/response round trip.
const DefaultTimeout = 30 * time.Second

// NewHTTPClient creates an HTTP client with the given timeout whose transport
// reports to the registered observability hooks. A zero timeout disables the
// client-level deadline; callers then bound calls through their context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &Transport{},
	}
}

// Transport is an http.RoundTripper that reports each round trip to
// [observability.HTTP]. Base defaults to http.DefaultTransport.
type Transport struct {
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
