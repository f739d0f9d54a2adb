//go:build !windows

package util

import "os"

// EnableVirtualTerminal is a no-op outside Windows; terminals there
// understand ANSI escapes already.
func EnableVirtualTerminal(*os.File) bool {
	return true
}
