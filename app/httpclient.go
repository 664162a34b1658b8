package app

import (
	"context"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// NewHTTPTransport creates an HTTP RoundTripper instrumented with OpenTelemetry
// tracing. The TracerProvider and Propagator are explicitly injected to avoid global
// state. Outbound calls a deferred body completes from create child spans under the
// parked request's span.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
	)
}

// NewHTTPClient creates an *http.Client that uses the instrumented transport.
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t}
}

// NewRequestBuilder creates a base [requests.Builder] with the instrumented transport.
// Handlers clone it for the upstream calls whose completion finishes their request.
func NewRequestBuilder(t http.RoundTripper) *requests.Builder {
	return requests.New().Transport(t)
}

// FetchJSONPath fetches url and extracts the value at path using gjson syntax (e.g.
// "data.items.0.name"). It fails when the response carries no value at that path.
func FetchJSONPath(ctx context.Context, rb *requests.Builder, url, path string) (gjson.Result, error) {
	var body string
	if err := rb.Clone().BaseURL(url).ToString(&body).Fetch(ctx); err != nil {
		return gjson.Result{}, errors.Wrapf(err, "failed to fetch %q", url)
	}

	res := gjson.Get(body, path)
	if !res.Exists() {
		return gjson.Result{}, errors.Newf("no value at %q in response from %q", path, url)
	}

	return res, nil
}
