package http

import (
	"context"
	"net/http"
	"time"

	"github.com/choreo/choreoserve/fs"
	"github.com/go-chi/chi/v5/middleware"
)

type baseURLKeyType struct{}

// Context key for the BaseURL stripped from the request
var baseURLKey = baseURLKeyType{}

// MiddlewareStripPrefix instantiates middleware that removes the BaseURL from the path
//
// The prefix is stored in the request context for BaseURL.
func MiddlewareStripPrefix(prefix string) Middleware {
	return func(next http.Handler) http.Handler {
		stripped := http.StripPrefix(prefix, next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), baseURLKey, prefix)
			stripped.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BaseURL returns the prefix MiddlewareStripPrefix removed from the
// path of r or "" if there wasn't one
func BaseURL(r *http.Request) string {
	prefix, _ := r.Context().Value(baseURLKey).(string)
	return prefix
}

// MiddlewareAccessLog instantiates middleware which logs each request
// with its status and size at Info level
func MiddlewareAccessLog() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fs.Infof(r.URL.Path, "%s: %s %d %d bytes in %v", r.RemoteAddr, r.Method, status, ww.BytesWritten(), time.Since(start))
		})
	}
}
