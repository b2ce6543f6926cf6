package terminal

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// Size holds terminal dimensions in character cells.
type Size struct {
	Cols int
	Rows int
}

// GetSize returns the current terminal dimensions. Strategies in order:
//
//  1. TIOCGWINSZ ioctl on stdout, then stderr (stdout may be redirected)
//  2. COLUMNS/LINES environment variables
//  3. Fallback to 80x24
func GetSize() Size {
	for _, fd := range []uintptr{os.Stdout.Fd(), os.Stderr.Fd()} {
		if s := sizeFromIoctl(fd); s.Cols > 0 && s.Rows > 0 {
			return s
		}
	}
	return sizeFromEnv()
}

// sizeFromIoctl queries the terminal size via TIOCGWINSZ. Returns a zero
// Size on failure.
func sizeFromIoctl(fd uintptr) Size {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return Size{}
	}
	return Size{Cols: int(ws.Col), Rows: int(ws.Row)}
}

// sizeFromEnv falls back to COLUMNS/LINES, then 80x24.
func sizeFromEnv() Size {
	s := Size{Cols: 80, Rows: 24}
	if v := os.Getenv("COLUMNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Cols = n
		}
	}
	if v := os.Getenv("LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Rows = n
		}
	}
	return s
}
