// Package log provides logging for choreoserve
package log

import (
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options contains options for controlling the logging
type Options struct {
	File       string // Log everything to this file
	MaxSize    int    // Max size of log file in MiB before rotating, 0 to disable rotation
	MaxBackups int    // Max number of rotated log files to keep
	MaxAge     int    // Max age in days of rotated log files
	Compress   bool   // Set to gzip rotated log files
	Format     string // Comma separated list of log format options
	LogSystemd bool   // set if using systemd logging
}

// DefaultOpt is the default values used for Opt
var DefaultOpt = Options{
	Format: "date,time",
}

// Opt is the options for the logger
var Opt = DefaultOpt

// logFlags converts Opt.Format into standard library log flags
func logFlags(format string) (flags int) {
	flagsStr := "," + format + ","
	if strings.Contains(flagsStr, ",date,") {
		flags |= log.Ldate
	}
	if strings.Contains(flagsStr, ",time,") {
		flags |= log.Ltime
	}
	if strings.Contains(flagsStr, ",microseconds,") {
		flags |= log.Lmicroseconds
	}
	if strings.Contains(flagsStr, ",UTC,") {
		flags |= log.LUTC
	}
	if strings.Contains(flagsStr, ",longfile,") {
		flags |= log.Llongfile
	}
	if strings.Contains(flagsStr, ",shortfile,") {
		flags |= log.Lshortfile
	}
	return flags
}

// openLogFile opens the log file, wrapping it in a rotating writer
// if a maximum size is set.
func openLogFile(opt *Options) (io.Writer, error) {
	if opt.MaxSize <= 0 {
		// No log rotation - just open the file as normal
		// We'll capture tracebacks like this too.
		f, err := os.OpenFile(opt.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
		if err != nil {
			return nil, err
		}
		redirectStderr(f)
		return f, nil
	}
	return &lumberjack.Logger{
		Filename:   opt.File,
		MaxSize:    opt.MaxSize, // MiB
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAge, // Days
		Compress:   opt.Compress,
		LocalTime:  true, // format log file names in localtime
	}, nil
}

// InitLogging start the logging as per the command line flags
func InitLogging() {
	flagsStr := "," + Opt.Format + ","
	log.SetFlags(logFlags(Opt.Format))
	if strings.Contains(flagsStr, ",pid,") {
		log.SetPrefix(strconv.Itoa(os.Getpid()) + " ")
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.DebugLevel)

	// Log file output
	if Opt.File != "" {
		w, err := openLogFile(&Opt)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		log.SetOutput(w)
		logrus.SetOutput(w)
	}

	// Activate systemd logger support if systemd invocation ID is
	// detected and output is going to stderr (not logging to a file)
	if !Redirected() && isJournalStream() {
		Opt.LogSystemd = true
	}

	// Systemd logging output
	if Opt.LogSystemd {
		startSystemdLog()
	}
}

// Redirected returns true if the log has been redirected from stdout
func Redirected() bool {
	return Opt.File != ""
}
