// Package serve provides the serve command.
package serve

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/choreo/choreoserve/cmd"
	"github.com/choreo/choreoserve/fs"
	"github.com/choreo/choreoserve/fs/config/flags"
	"github.com/choreo/choreoserve/lib/atexit"
	"github.com/choreo/choreoserve/lib/env"
	libhttp "github.com/choreo/choreoserve/lib/http"
	libserve "github.com/choreo/choreoserve/lib/http/serve"
	"github.com/choreo/choreoserve/lib/metrics"
	"github.com/choreo/choreoserve/lib/systemd"
	"github.com/spf13/cobra"
)

// Options required for the serve command
type Options struct {
	HTTP  libhttp.Config
	Serve libserve.Options
}

// DefaultOpt is the default values used for Options
var DefaultOpt = Options{
	HTTP:  libhttp.DefaultCfg(),
	Serve: libserve.DefaultOpt,
}

// Opt is options set by command line flags
var Opt = DefaultOpt

func init() {
	flagSet := Command.Flags()
	Opt.HTTP.AddFlagsPrefix(flagSet, "")
	flags.BoolVarP(flagSet, &Opt.Serve.SniffContent, "sniff-content", "", Opt.Serve.SniffContent, "Detect the type of files with unknown extensions from their contents")
	metrics.AddFlags(flagSet)
	cmd.Root.AddCommand(Command)
}

// Command definition for cobra
var Command = &cobra.Command{
	Use:   "serve [root]",
	Short: `Serve a directory over HTTP.`,
	Long: `Choreoserve serve serves the files in root over HTTP, or the current
directory if root isn't given. "~" and environment variables in root
are expanded.

Only GET and HEAD are answered. A request for a directory is answered
with its index.html (or index.htm) and a directory without one is not
found. Requests can't reach files outside root.

Files ending in .mjs are served as "text/javascript". Other files get
their content type from their extension, falling back to
"application/octet-stream". With ` + "`--sniff-content`" + ` files with an unknown
extension have their type detected from their first bytes instead.

On startup a single line naming root and the port is logged, and the
server runs until interrupted. If the address can't be bound, for
example because the port is in use, choreoserve exits with an error.

### Metrics

Use ` + "`--metrics-addr`" + ` to serve Prometheus metrics about the requests
answered from /metrics on a separate address.

` + libhttp.Help(""),
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 1, command, args)
		opt := Opt
		if len(args) > 0 {
			opt.Serve.Root = args[0]
		}
		opt.Serve.Root = env.ShellExpand(opt.Serve.Root)
		cmd.Run(command, func() error {
			s, err := newServer(context.Background(), &opt, &metrics.Opt)
			if err != nil {
				return err
			}
			defer systemd.Notify()()
			if err := systemd.UpdateStatus("Serving " + strings.Join(s.URLs(), ", ")); err != nil {
				fs.Debugf(nil, "Failed to update systemd status: %v", err)
			}
			s.Wait()
			return nil
		})
	},
}

// server serves the files of one root
type server struct {
	*libhttp.Server
	handler *libserve.Handler
	metrics *libhttp.Server // nil unless the metrics server is on
}

// newServer binds the listeners for opt and starts serving
//
// Nothing is served unless every listener could be opened.
func newServer(ctx context.Context, opt *Options, metricsOpt *metrics.Options) (s *server, err error) {
	handler, err := libserve.NewHandler(opt.Serve)
	if err != nil {
		return nil, err
	}
	s = &server{handler: handler}

	middlewares := []libhttp.Middleware{libhttp.MiddlewareAccessLog()}
	var m *metrics.Metrics
	if metrics.Enabled(metricsOpt) {
		m = metrics.New()
		middlewares = append(middlewares, m.Middleware())
	}

	s.Server, err = libhttp.NewServer(ctx,
		libhttp.WithConfig(opt.HTTP),
		libhttp.WithMiddleware(middlewares...),
	)
	if err != nil {
		return nil, err
	}
	// Close the listeners if we fail from here on
	httpServer := s.Server
	defer atexit.OnError(&err, func() { _ = httpServer.Shutdown() })()
	router := s.Router()
	router.Handle("/", handler)
	router.Handle("/*", handler)

	if m != nil {
		s.metrics, err = m.Start(ctx, metricsOpt)
		if err != nil {
			return nil, err
		}
	}

	s.Serve()
	fs.Logf(nil, "Serving %q at port %s (%s)", handler.Root(), strings.Join(ports(s.Addrs()), ", "), strings.Join(s.URLs(), ", "))
	return s, nil
}

// Shutdown stops the file server and the metrics server
func (s *server) Shutdown() error {
	err := s.Server.Shutdown()
	if s.metrics != nil {
		if metricsErr := s.metrics.Shutdown(); err == nil {
			err = metricsErr
		}
	}
	return err
}

// ports returns the port of each TCP address or the address itself
// for anything else, such as a unix socket
func ports(addrs []net.Addr) (out []string) {
	for _, addr := range addrs {
		if tcpAddr, ok := addr.(*net.TCPAddr); ok {
			out = append(out, strconv.Itoa(tcpAddr.Port))
		} else {
			out = append(out, addr.String())
		}
	}
	return out
}
