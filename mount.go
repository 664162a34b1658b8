package ahttp

import (
	"net/http"
	"net/url"
	"strings"
)

// Mount mounts a standard [http.Handler] on a sub-path pattern. The mounted handler
// receives requests with the mount prefix stripped from the path. Deferred-route
// middleware does not apply: the mounted handler owns its own error handling.
func (m *Mux) Mount(pattern string, handler http.Handler) {
	method, path := splitMethodPattern(pattern)

	stripped := stripPrefix(path, handler)

	exact := method + path
	subtree := method + path + "/"

	m.handle(exact, stripped)
	m.handle(subtree, stripped)
}

// MountHandler mounts a synchronous [Handler] on a sub-path pattern, with middleware
// registered via [Mux.Use] applied. Middleware sees the original path; the strip
// happens before the handler runs.
func (m *Mux) MountHandler(pattern string, h Handler) {
	method, path := splitMethodPattern(pattern)

	serve := m.serveSync(pattern, Wrap(h, m.middlewares.buffered...))
	stripped := stripPrefix(path, serve)

	exact := method + path
	subtree := method + path + "/"

	m.handle(exact, stripped)
	m.handle(subtree, stripped)
}

func splitMethodPattern(pattern string) (method, path string) {
	if idx := strings.LastIndex(pattern, "/"); idx > 0 {
		prefix := pattern[:idx]
		if spaceIdx := strings.Index(prefix, " "); spaceIdx >= 0 {
			return pattern[:spaceIdx+1], pattern[spaceIdx+1:]
		}
	}

	return "", pattern
}

func stripPrefix(prefix string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, prefix)
		if p == "" {
			p = "/"
		}

		rp := ""
		if r.URL.RawPath != "" {
			rp = strings.TrimPrefix(r.URL.RawPath, prefix)
			if rp == "" {
				rp = "/"
			}
		}

		r2 := new(http.Request)
		*r2 = *r
		r2.URL = new(url.URL)
		*r2.URL = *r.URL
		r2.URL.Path = p
		r2.URL.RawPath = rp

		handler.ServeHTTP(w, r2)
	})
}
