//go:build !unix && !windows

package transport

func isInterrupted(error) bool {
	return false
}
