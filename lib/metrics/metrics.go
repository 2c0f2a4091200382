// Package metrics counts the requests served and exposes them to
// Prometheus
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/choreo/choreoserve/fs"
	libhttp "github.com/choreo/choreoserve/lib/http"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

const namespace = "choreoserve"

// Options holds the configuration for the metrics server
type Options struct {
	HTTP libhttp.Config
}

// DefaultOpt is the default values used for Options
//
// There are no listen addresses so the metrics server is off.
var DefaultOpt = Options{
	HTTP: func() libhttp.Config {
		cfg := libhttp.DefaultCfg()
		cfg.ListenAddr = nil
		return cfg
	}(),
}

// Opt is the options for the metrics server
var Opt = DefaultOpt

// AddFlags adds the metrics server flags to the flagSet
func AddFlags(flagSet *pflag.FlagSet) {
	Opt.HTTP.AddFlagsPrefix(flagSet, "metrics-")
}

// Enabled returns whether the metrics server is enabled
func Enabled(opt *Options) bool {
	return len(opt.HTTP.ListenAddr) > 0
}

// Metrics holds the collectors for the requests served
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	bytes    *prometheus.CounterVec
}

// New makes a Metrics with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests served by method and status code.",
		}, []string{"method", "code"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_bytes_total",
			Help:      "Number of bytes sent in HTTP response bodies by method.",
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.bytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware counts every request passing through it
func (m *Metrics) Middleware() libhttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
			m.bytes.WithLabelValues(r.Method).Add(float64(ww.BytesWritten()))
		})
	}
}

// Handler returns the handler exposing the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Start starts the metrics server on opt.HTTP serving /metrics
//
// It returns nil if the metrics server isn't enabled.
func (m *Metrics) Start(ctx context.Context, opt *Options) (*libhttp.Server, error) {
	if !Enabled(opt) {
		return nil, nil
	}
	s, err := libhttp.NewServer(ctx, libhttp.WithConfig(opt.HTTP))
	if err != nil {
		return nil, err
	}
	s.Router().Get("/metrics", m.Handler().ServeHTTP)
	s.Serve()
	for _, url := range s.URLs() {
		fs.Logf(nil, "Serving metrics on %smetrics", url)
	}
	return s, nil
}
