// Systemd interface for Unix variants only

//go:build !windows && !nacl && !plan9
// +build !windows,!nacl,!plan9

package log

import (
	"fmt"
	"log"

	"github.com/choreo/choreoserve/fs"
	"github.com/coreos/go-systemd/v22/journal"
	sysdjournald "github.com/iguanesolutions/go-systemd/v5/journald"
)

// Enables systemd logs if configured or if auto detected
func startSystemdLog() bool {
	// journald adds its own timestamps
	log.SetFlags(logFlags(Opt.Format) &^ (log.Ldate | log.Ltime | log.Lmicroseconds))
	fs.LogPrint = func(level fs.LogLevel, text string) {
		text = fmt.Sprintf("%s%-6s: %s", systemdLogPrefix(level), level, text)
		_ = log.Output(4, text)
	}
	return true
}

var logLevelToSystemdPrefix = []string{
	fs.LogLevelEmergency: sysdjournald.EmergPrefix,
	fs.LogLevelAlert:     sysdjournald.AlertPrefix,
	fs.LogLevelCritical:  sysdjournald.CritPrefix,
	fs.LogLevelError:     sysdjournald.ErrPrefix,
	fs.LogLevelWarning:   sysdjournald.WarningPrefix,
	fs.LogLevelNotice:    sysdjournald.NoticePrefix,
	fs.LogLevelInfo:      sysdjournald.InfoPrefix,
	fs.LogLevelDebug:     sysdjournald.DebugPrefix,
}

func systemdLogPrefix(l fs.LogLevel) string {
	if l >= fs.LogLevel(len(logLevelToSystemdPrefix)) {
		return ""
	}
	return logLevelToSystemdPrefix[l]
}

// isJournalStream returns true if stderr is connected to the journal
func isJournalStream() bool {
	usingJournald, _ := journal.StderrIsJournalStream()
	return usingJournald
}
