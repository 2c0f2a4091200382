//go:build windows || plan9 || js
// +build windows plan9 js

package http

import (
	"strings"
)

// IsAddrInUse returns true if err was caused by the listening address
// already being bound
func IsAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "address already in use") ||
		strings.Contains(msg, "Only one usage of each socket address")
}
