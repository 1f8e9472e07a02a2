package types

import "errors"

var (
	ErrMissingConfig     = errors.New("missing required configuration")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrSyncIncomplete    = errors.New("sync finished with failed catalog operations")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
