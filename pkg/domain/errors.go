package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress = errors.New("input is neither a hex address nor an ENS name")
	ErrNameNotFound   = errors.New("ENS name does not resolve to an address")
	ErrRateLimited    = errors.New("data provider rate limit reached")
)

// UpstreamError marks a failure of a chain data provider: unreachable,
// breaker open or a malformed payload.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(provider string, err error) error {
	return &UpstreamError{
		Provider: provider,
		Err:      err,
	}
}

func IsUpstreamError(err error) bool {
	if err == nil {
		return false
	}
	var upstreamError *UpstreamError
	return errors.As(err, &upstreamError)
}
