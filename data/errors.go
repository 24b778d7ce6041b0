package data

import "errors"

// Standard errors catalog and sink implementations should use.
var (
	ErrNotExist = errors.New("tarbuild: record does not exist")
	ErrExist    = errors.New("tarbuild: record already exists")
	ErrClosed   = errors.New("tarbuild: already closed")
)
