//go:build windows

package util

import (
	"log/slog"
	"os"

	"golang.org/x/sys/windows"
)

// EnableVirtualTerminal switches the console behind f to ANSI escape
// processing. It reports whether escapes will be rendered.
func EnableVirtualTerminal(f *os.File) bool {
	h := windows.Handle(f.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		slog.Debug("EnableVirtualTerminal: SetConsoleMode failed", "error", err)
		return false
	}
	return true
}
