//go:build !windows && !plan9 && !js
// +build !windows,!plan9,!js

package http

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// IsAddrInUse returns true if err was caused by the listening address
// already being bound
func IsAddrInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}
