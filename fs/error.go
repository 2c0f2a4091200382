// Errors and error handling

package fs

import (
	"github.com/pkg/errors"
)

// Globals
var (
	// ErrorDirNotFound is returned when the served root doesn't exist
	ErrorDirNotFound = errors.New("directory not found")
	// ErrorNotADirectory is returned when the served root is a file
	ErrorNotADirectory = errors.New("not a directory")
)
