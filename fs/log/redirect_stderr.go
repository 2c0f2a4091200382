// Log the panic to the log file - for oses which can't do this

//go:build windows || solaris || plan9 || js
// +build windows solaris plan9 js

package log

import (
	"os"

	"github.com/choreo/choreoserve/fs"
)

// redirectStderr to the file passed in
func redirectStderr(f *os.File) {
	fs.Errorf(nil, "Can't redirect stderr to file")
}
