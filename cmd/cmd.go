// Package cmd implements the choreoserve command
//
// It is in a sub package so it's internals can be re-used elsewhere
package cmd

import (
	"fmt"
	"log"
	"net"
	"os"
	"runtime"

	"github.com/choreo/choreoserve/fs"
	"github.com/choreo/choreoserve/fs/config/configflags"
	fslog "github.com/choreo/choreoserve/fs/log"
	"github.com/choreo/choreoserve/fs/log/logflags"
	"github.com/choreo/choreoserve/lib/atexit"
	"github.com/choreo/choreoserve/lib/buildinfo"
	"github.com/choreo/choreoserve/lib/exitcode"
	libhttp "github.com/choreo/choreoserve/lib/http"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Globals
var (
	// Flags
	version bool
	// Errors
	errorNotEnoughArguments = errors.New("not enough arguments")
	errorTooManyArguments   = errors.New("too many arguments")
	errorBadFlags           = errors.New("bad flags")
	// exit is swapped out by the tests
	exit = os.Exit
)

// Root is the main choreoserve command
var Root = &cobra.Command{
	Use:   "choreoserve",
	Short: "Serve a directory of choreography assets over HTTP",
	Long: `
Choreoserve serves the files in a directory over HTTP so a browser can
load a timeline's HTML, stylesheets and JavaScript modules from it.

Files ending in .mjs are served as "text/javascript" so browsers will
run them as ES modules. Everything else gets its type from the
system's mime table.

Run "choreoserve serve" to serve the current directory on port 8000.
`,
	Run: func(command *cobra.Command, args []string) {
		if version {
			ShowVersion()
			resolveExitCode(nil)
		}
		_ = command.Usage()
	},
	SilenceUsage: true,
}

func init() {
	Root.Flags().BoolVarP(&version, "version", "V", false, "Print the version number")
	configflags.AddFlags(fs.GetConfig(), Root.PersistentFlags())
	logflags.AddFlags(Root.PersistentFlags())
	cobra.OnInitialize(initConfig)
}

// ShowVersion prints the version to stdout
func ShowVersion() {
	osVersion, osKernel := buildinfo.GetOSVersion()
	linking, tagString := buildinfo.GetLinkingAndTags()

	fmt.Printf("choreoserve %s\n", fs.Version)
	fmt.Printf("- os/version: %s\n", osVersion)
	fmt.Printf("- os/kernel: %s\n", osKernel)
	fmt.Printf("- os/type: %s\n", runtime.GOOS)
	fmt.Printf("- os/arch: %s\n", runtime.GOARCH)
	fmt.Printf("- go/version: %s\n", runtime.Version())
	fmt.Printf("- go/linking: %s\n", linking)
	fmt.Printf("- go/tags: %s\n", tagString)
}

// Run runs f, logs any error it returns then exits choreoserve with
// the matching exit code
func Run(cmd *cobra.Command, f func() error) {
	cmdErr := f()
	fs.Debugf(nil, "%d go routines active", runtime.NumGoroutine())
	if cmdErr != nil {
		fs.Errorf(nil, "Failed to %s: %v", cmd.Name(), cmdErr)
	}
	resolveExitCode(cmdErr)
}

// CheckArgs checks there are enough arguments and prints a message if not
func CheckArgs(MinArgs, MaxArgs int, cmd *cobra.Command, args []string) {
	if len(args) < MinArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments minimum: you provided %d non flag arguments: %q\n", cmd.Name(), MinArgs, len(args), args)
		resolveExitCode(errorNotEnoughArguments)
	} else if len(args) > MaxArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments maximum: you provided %d non flag arguments: %q\n", cmd.Name(), MaxArgs, len(args), args)
		resolveExitCode(errorTooManyArguments)
	}
}

// initConfig is run by cobra after initialising the flags
func initConfig() {
	ci := fs.GetConfig()

	// Start the logger
	fslog.InitLogging()

	// Finish parsing any command line flags
	if err := configflags.SetFlags(ci, Root.PersistentFlags()); err != nil {
		fs.Errorf(nil, "%v", err)
		resolveExitCode(errorBadFlags)
	}

	// Write the args for debug purposes
	fs.Debugf("choreoserve", "Version %q starting with parameters %q", fs.Version, os.Args)

	if fslog.Opt.LogSystemd {
		fs.Debugf("choreoserve", "systemd logging support activated")
	}
}

// exitCode works out the exit status for err
func exitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}

	cause := errors.Cause(err)
	var opErr *net.OpError

	switch {
	case cause == fs.ErrorDirNotFound, cause == fs.ErrorNotADirectory:
		return exitcode.DirNotFound
	case cause == errorNotEnoughArguments, cause == errorTooManyArguments, cause == errorBadFlags:
		return exitcode.UsageError
	case libhttp.IsAddrInUse(err):
		return exitcode.BindError
	case errors.As(err, &opErr) && opErr.Op == "listen":
		return exitcode.BindError
	default:
		return exitcode.UncategorizedError
	}
}

// resolveExitCode runs the exit handlers then exits with the status
// for err
func resolveExitCode(err error) {
	atexit.Run()
	if atexit.Signalled() {
		exit(atexit.SignalExitCode())
		return
	}
	exit(exitCode(err))
}

// Main runs choreoserve
func Main() {
	if err := Root.Execute(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}
