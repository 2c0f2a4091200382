// Package logflags implements command line flags to set up the log
package logflags

import (
	"github.com/choreo/choreoserve/fs/config/flags"
	"github.com/choreo/choreoserve/fs/log"
	"github.com/spf13/pflag"
)

// AddFlags adds the log flags to the flagSet
func AddFlags(flagSet *pflag.FlagSet) {
	flags.StringVarP(flagSet, &log.Opt.File, "log-file", "", log.Opt.File, "Log everything to this file")
	flags.IntVarP(flagSet, &log.Opt.MaxSize, "log-file-max-size", "", log.Opt.MaxSize, "Maximum size in MiB of the log file before it's rotated (0 to disable)")
	flags.IntVarP(flagSet, &log.Opt.MaxBackups, "log-file-max-backups", "", log.Opt.MaxBackups, "Maximum number of old log files to retain")
	flags.IntVarP(flagSet, &log.Opt.MaxAge, "log-file-max-age", "", log.Opt.MaxAge, "Maximum number of days to retain old log files")
	flags.BoolVarP(flagSet, &log.Opt.Compress, "log-file-compress", "", log.Opt.Compress, "If set, compress rotated log files using gzip")
	flags.StringVarP(flagSet, &log.Opt.Format, "log-format", "", log.Opt.Format, "Comma separated list of log format options")
	flags.BoolVarP(flagSet, &log.Opt.LogSystemd, "log-systemd", "", log.Opt.LogSystemd, "Activate systemd integration for the logger")
}
