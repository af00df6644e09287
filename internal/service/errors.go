package service

import "errors"

// Error kinds returned by BookService. Causes are wrapped with %w so both
// the kind and the underlying error stay inspectable with errors.Is.
var (
	ErrAuthRequired = errors.New("authentication required")
	ErrBlobWrite    = errors.New("blob write error")
	ErrDB           = errors.New("db error")
	ErrSign         = errors.New("sign error")
	ErrFetch        = errors.New("fetch error")
)

var (
	errNoSession  = errors.New("no session")
	errReaderNil  = errors.New("reader is nil")
	errPathNeeded = errors.New("file path is required")
)
