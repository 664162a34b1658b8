package ahttp_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deferkit/ahttp"
	"github.com/stretchr/testify/require"
)

func serveBlogPost(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
	rw.Finish(fmt.Sprintf("hello %v, %s", r.Context().Value("foo"), r.PathValue("slug")))
	return nil
}

func middleware1(next ahttp.Handler) ahttp.Handler {
	return ahttp.HandlerFunc(func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
		r = r.WithContext(context.WithValue(r.Context(), "foo", "bar")) //nolint:staticcheck
		return next.ServeAHTTP(r.Context(), rw, r)
	})
}

func TestDeferredRouteWithMiddleware(t *testing.T) {
	mux, _, _ := newDeferredMux(t)
	mux.Use(middleware1)
	mux.AGet("/blog/{slug}", serveBlogPost)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/111", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `hello bar, 111`, rec.Body.String())
}

func TestMiddlewareOrder(t *testing.T) {
	var res string

	mw := func(tag string) ahttp.Middleware {
		return func(next ahttp.Handler) ahttp.Handler {
			return ahttp.HandlerFunc(func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
				res += tag + "("
				err := next.ServeAHTTP(ctx, rw, r)
				res += ")" + tag

				return err
			})
		}
	}

	mux, _, _ := newDeferredMux(t)
	mux.Use(mw("1"), mw("2"))
	mux.AGet("/", func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
		res += "inner"
		rw.Finish(nil)

		return nil
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, "1(2(inner)2)1", res)
}

func TestUseAfterHandlePanics(t *testing.T) {
	mux, _, _ := newDeferredMux(t)
	mux.AGet("/", func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
		rw.Finish(nil)
		return nil
	})

	require.PanicsWithValue(t, "ahttp: cannot call Use() after registering a route", func() {
		mux.Use(middleware1)
	})
}

func TestDuplicateStatusHandlerPanics(t *testing.T) {
	mux, _, _ := newDeferredMux(t)
	mux.HandleStatus(406, func(rw *ahttp.Responder, r *http.Request) string { return "a" })

	require.Panics(t, func() {
		mux.HandleStatus(406, func(rw *ahttp.Responder, r *http.Request) string { return "b" })
	})
}

func TestMountStdSubPath(t *testing.T) {
	stdHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "path:%s", r.URL.Path)
	})

	mux, _, _ := newDeferredMux(t)
	mux.Mount("/api", stdHandler)

	for path, want := range map[string]string{
		"/api/users": "path:/users",
		"/api":       "path:/",
		"/api/":      "path:/",
	} {
		rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil)
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, want, rec.Body.String())
	}
}

func TestMountHandlerWithMethod(t *testing.T) {
	mux, _, _ := newDeferredMux(t)
	mux.MountHandler("GET /files", ahttp.HandlerFunc(func(ctx context.Context, rw *ahttp.Responder, r *http.Request) error {
		rw.Finish("file at " + r.URL.Path)
		return nil
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a.txt", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "file at /a.txt", rec.Body.String())
}
