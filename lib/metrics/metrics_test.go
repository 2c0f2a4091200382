package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	libhttp "github.com/choreo/choreoserve/lib/http"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptDisabled(t *testing.T) {
	assert.False(t, Enabled(&DefaultOpt))
	s, err := New().Start(context.Background(), &DefaultOpt)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMiddleware(t *testing.T) {
	m := New()
	handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("export const x=1;"))
	}))

	for _, target := range []string{"/app.mjs", "/app.mjs", "/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://example.com"+target, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "404")))
	assert.Equal(t, float64(17+17+len("File not found\n")), testutil.ToFloat64(m.bytes.WithLabelValues("GET")))
}

func TestStart(t *testing.T) {
	m := New()
	handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("HEAD", "http://example.com/", nil))

	opt := Options{HTTP: libhttp.DefaultCfg()}
	opt.HTTP.ListenAddr = []string{"127.0.0.1:0"}
	require.True(t, Enabled(&opt))
	s, err := m.Start(context.Background(), &opt)
	require.NoError(t, err)
	require.NotNil(t, s)
	defer func() {
		require.NoError(t, s.Shutdown())
	}()

	urls := s.URLs()
	require.Len(t, urls, 1)
	resp, err := http.Get(urls[0] + "metrics")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `choreoserve_http_requests_total{code="200",method="HEAD"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
