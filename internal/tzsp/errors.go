package tzsp

import "errors"

var (
	ErrShortHeader       = errors.New("tzsp: datagram shorter than header")
	ErrUnsupportedHeader = errors.New("tzsp: unsupported header")
	ErrTruncated         = errors.New("tzsp: truncated tag")
	ErrTagOverrun        = errors.New("tzsp: tag length overruns datagram")
	ErrMissingEnd        = errors.New("tzsp: missing end tag")
	ErrFCS               = errors.New("tzsp: frame check sequence error")
	ErrTagTooLarge       = errors.New("tzsp: tag value too large")
)
