package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrNotConfigured         = errors.New("provider not configured")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrUpstreamTimeout       = errors.New("upstream timeout")
)
