//go:build windows

package transport

import (
	"errors"

	"golang.org/x/sys/windows"
)

func isInterrupted(err error) bool {
	return errors.Is(err, windows.WSAEINTR)
}
