//go:build !unix

package daemon

const Supported = false

func Detach() (bool, error) {
	return false, ErrUnsupported
}
