package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoCredential     = errors.New("no credential configured")
	ErrNoUpdate         = errors.New("no newer release available")
	ErrChecksumMismatch = errors.New("archive checksum mismatch")
	ErrBundleIDMismatch = errors.New("bundle identifier mismatch")
	ErrSignatureInvalid = errors.New("code signature verification failed")
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d", e.Status)
}

func NewStatusError(status int) *StatusError {
	return &StatusError{Status: status}
}
