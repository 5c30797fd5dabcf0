package auth

import "errors"

// ErrMissingCredential is returned when a request carries no usable credential.
var ErrMissingCredential = errors.New("missing credential")

// ErrInvalidCredential is returned when a credential is present but does not
// verify, or refers to a user that no longer exists.
var ErrInvalidCredential = errors.New("invalid credential")

// IsCredentialError reports whether err is a credential failure rather than
// an internal error.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrMissingCredential)
}
