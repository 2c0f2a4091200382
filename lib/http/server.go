// Package http provides the HTTP server used to serve files
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/choreo/choreoserve/fs"
	"github.com/choreo/choreoserve/fs/config/flags"
	"github.com/choreo/choreoserve/lib/atexit"
	"github.com/coreos/go-systemd/v22/activation"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Help returns text describing the http server to add to the command
// help.
func Help(prefix string) string {
	return `### Server options

Use ` + "`--" + prefix + "addr`" + ` to specify which IP address and port the server should
listen on, eg ` + "`--" + prefix + "addr 127.0.0.1:8000` or `--" + prefix + "addr :8080`" + ` to listen to all
IPs.  You can use port :0 to let the OS choose an available port.

You can use a unix socket by setting the url to ` + "`unix:///path/to/socket`" + `
or just by using an absolute path name.

` + "`--" + prefix + "addr`" + ` may be repeated to listen on multiple IPs/ports/sockets.

` + "`--" + prefix + "server-read-timeout` and `--" + prefix + "server-write-timeout`" + ` can be used to
control the timeouts on the server.  Note that this is the total time
for a transfer.

` + "`--" + prefix + "max-header-bytes`" + ` controls the maximum number of bytes the server will
accept in the HTTP header.

` + "`--" + prefix + "baseurl`" + ` controls the URL prefix that files are served from.  By
default files are served from the root.  Leading and trailing "/" are
added automatically.

### Socket activation

Instead of the listening addresses specified above, the server will
listen to all FDs passed by the service manager, if any.  This allows
it to be a socket-activated systemd service.
`
}

// Middleware function signature required by chi.Router.Use()
type Middleware func(http.Handler) http.Handler

// Config contains options for the http Server
type Config struct {
	ListenAddr         []string      // Port(s) to listen on
	BaseURL            string        // prefix to strip from URLs
	ServerReadTimeout  time.Duration // Timeout for server reading data
	ServerWriteTimeout time.Duration // Timeout for server writing data
	MaxHeaderBytes     int           // Maximum size of request header
}

// AddFlagsPrefix adds flags for the http server
func (cfg *Config) AddFlagsPrefix(flagSet *pflag.FlagSet, prefix string) {
	flags.StringArrayVarP(flagSet, &cfg.ListenAddr, prefix+"addr", "", cfg.ListenAddr, "IPaddress:Port, :Port or [unix://]/path/to/socket to bind server to")
	flags.DurationVarP(flagSet, &cfg.ServerReadTimeout, prefix+"server-read-timeout", "", cfg.ServerReadTimeout, "Timeout for server reading data")
	flags.DurationVarP(flagSet, &cfg.ServerWriteTimeout, prefix+"server-write-timeout", "", cfg.ServerWriteTimeout, "Timeout for server writing data")
	flags.IntVarP(flagSet, &cfg.MaxHeaderBytes, prefix+"max-header-bytes", "", cfg.MaxHeaderBytes, "Maximum size of request header")
	flags.StringVarP(flagSet, &cfg.BaseURL, prefix+"baseurl", "", cfg.BaseURL, "Prefix for URLs - leave blank for root")
}

// DefaultCfg is the default values used for Config
//
// By default listen on all interfaces on port 8000.
func DefaultCfg() Config {
	return Config{
		ListenAddr:         []string{":8000"},
		ServerReadTimeout:  1 * time.Hour,
		ServerWriteTimeout: 1 * time.Hour,
		MaxHeaderBytes:     4096,
	}
}

type instance struct {
	url        string
	listener   net.Listener
	httpServer *http.Server
}

func (s instance) serve(wg *sync.WaitGroup) {
	defer wg.Done()
	err := s.httpServer.Serve(s.listener)
	if err != http.ErrServerClosed && err != nil {
		fs.Logf(nil, "%s: unexpected error: %s", s.listener.Addr(), err.Error())
	}
}

// Server contains info about the running http server
type Server struct {
	wg           sync.WaitGroup
	mux          chi.Router
	instances    []instance
	cfg          Config
	atexitHandle atexit.FnHandle
}

// Option allows customizing the server
type Option func(*Server)

// WithConfig option applies the Config to the server, overriding defaults
func WithConfig(cfg Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithMiddleware option adds middleware to the front of the router
func WithMiddleware(middlewares ...Middleware) Option {
	return func(s *Server) {
		for _, m := range middlewares {
			s.mux.Use(m)
		}
	}
}

func newInstance(ctx context.Context, s *Server, listener net.Listener, url string) instance {
	return instance{
		url:      url,
		listener: listener,
		httpServer: &http.Server{
			Handler:           s.mux,
			ReadTimeout:       s.cfg.ServerReadTimeout,
			WriteTimeout:      s.cfg.ServerWriteTimeout,
			MaxHeaderBytes:    s.cfg.MaxHeaderBytes,
			ReadHeaderTimeout: 10 * time.Second, // time to send the headers
			IdleTimeout:       60 * time.Second, // time to keep idle connections open
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		},
	}
}

// NewServer instantiates a new http server using provided options.
//
// All the listeners are opened here so that an address which can't
// be bound is reported before anything is served.
func NewServer(ctx context.Context, options ...Option) (*Server, error) {
	s := &Server{
		mux: chi.NewRouter(),
		cfg: DefaultCfg(),
	}

	for _, opt := range options {
		opt(s)
	}

	// Build base router
	s.mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	s.mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	// Ignore passing "/" for BaseURL
	s.cfg.BaseURL = strings.Trim(s.cfg.BaseURL, "/")
	if s.cfg.BaseURL != "" {
		s.cfg.BaseURL = "/" + s.cfg.BaseURL
		s.mux.Use(MiddlewareStripPrefix(s.cfg.BaseURL))
	}

	// (Only) listen on FDs provided by the service manager, if any.
	sdListeners, err := activation.Listeners()
	if err != nil {
		return nil, errors.Wrap(err, "unable to acquire listeners")
	}
	for i, listener := range sdListeners {
		if listener == nil {
			continue
		}
		url := fmt.Sprintf("sd-listen:%d%s/", i, s.cfg.BaseURL)
		s.instances = append(s.instances, newInstance(ctx, s, listener, url))
	}
	if len(s.instances) != 0 {
		return s, nil
	}

	// Process all listeners specified in the CLI Args.
	for _, addr := range s.cfg.ListenAddr {
		var inst instance
		if strings.HasPrefix(addr, "unix://") || filepath.IsAbs(addr) {
			addr = strings.TrimPrefix(addr, "unix://")
			listener, err := net.Listen("unix", addr)
			if err != nil {
				s.closeListeners()
				return nil, errors.Wrapf(err, "failed to listen on %q", addr)
			}
			inst = newInstance(ctx, s, listener, addr)
		} else {
			addr = strings.TrimPrefix(addr, "http://")
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				s.closeListeners()
				return nil, errors.Wrapf(err, "failed to listen on %q", addr)
			}
			inst = newInstance(ctx, s, listener, fmt.Sprintf("http://%s%s/", listener.Addr().String(), s.cfg.BaseURL))
		}
		s.instances = append(s.instances, inst)
	}
	if len(s.instances) == 0 {
		return nil, errors.New("no addresses to listen on")
	}

	return s, nil
}

// closeListeners closes any listeners opened so far
func (s *Server) closeListeners() {
	for _, ii := range s.instances {
		_ = ii.listener.Close()
	}
	s.instances = nil
}

// Serve starts the HTTP server on each listener
func (s *Server) Serve() {
	s.wg.Add(len(s.instances))
	for _, ii := range s.instances {
		fs.Debugf(nil, "Listening on %s", ii.url)
		go ii.serve(&s.wg)
	}
	// Install an atexit handler to shutdown gracefully
	s.atexitHandle = atexit.Register(func() { _ = s.Shutdown() })
}

// Wait blocks while the server is serving requests
func (s *Server) Wait() {
	s.wg.Wait()
}

// Router returns the server base router
func (s *Server) Router() chi.Router {
	return s.mux
}

// Time to wait to Shutdown an HTTP server
const gracefulShutdownTime = 10 * time.Second

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	// Stop the atexit handler
	if s.atexitHandle != nil {
		atexit.Unregister(s.atexitHandle)
		s.atexitHandle = nil
	}
	for _, ii := range s.instances {
		expiry := time.Now().Add(gracefulShutdownTime)
		ctx, cancel := context.WithDeadline(context.Background(), expiry)
		if err := ii.httpServer.Shutdown(ctx); err != nil {
			fs.Logf(nil, "error shutting down server: %s", err)
		}
		cancel()
		// Close listeners which were never served
		_ = ii.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// URLs returns all configured URLS
func (s *Server) URLs() []string {
	var out []string
	for _, ii := range s.instances {
		if ii.listener.Addr().Network() == "unix" {
			continue
		}
		out = append(out, ii.url)
	}
	return out
}

// Addrs returns the addresses of all the listeners
func (s *Server) Addrs() []net.Addr {
	var out []net.Addr
	for _, ii := range s.instances {
		out = append(out, ii.listener.Addr())
	}
	return out
}
