package auth

import "errors"

// Rejection taxonomy. All four are terminal, user-visible failures;
// handlers map the first three to 401 and ErrAccessDenied to 403.
var (
	ErrTokenInvalid = errors.New("failed token validation")
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("authorization check failed")
	ErrAccessDenied = errors.New("access denied")
)
