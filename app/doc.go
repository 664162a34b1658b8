// Package app provides a batteries-included application layer for serving deferred
// routes: environment-driven configuration, zap logging, OpenTelemetry tracing, an
// instrumented outbound HTTP client, and an fx-managed lifecycle that runs the
// scheduler loop and the HTTP server together.
//
// A minimal application:
//
//	type Env struct {
//	    app.BaseEnvironment
//	}
//
//	func main() {
//	    app.NewApp[Env](func(m *ahttp.Mux, rb *requests.Builder) {
//	        m.AGet("/quote/{id}", func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
//	            go func() {
//	                res, err := app.FetchJSONPath(ctx, rb, "https://upstream.example/quotes/"+r.PathValue("id"), "quote.text")
//	                if err != nil {
//	                    rw.Fail(err)
//	                    return
//	                }
//	                rw.Finish(res.String())
//	            }()
//	            return nil
//	        })
//	    }).Run()
//	}
//
// Configuration comes from AHTTP_* environment variables, see [BaseEnvironment]. Embed
// it in your own struct to add application-specific variables; the routing function
// can request the typed environment through dependency injection.
package app
