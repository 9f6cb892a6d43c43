package auth

import "net/http"

// BusinessError is an expected failure whose message is safe to show the
// caller verbatim. Anything else that escapes the service layer is treated as
// an internal error and hidden behind a generic 500.
type BusinessError struct {
	Status  int
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

func unauthorized(msg string) *BusinessError {
	return &BusinessError{Status: http.StatusUnauthorized, Message: msg}
}

func conflict(msg string) *BusinessError {
	return &BusinessError{Status: http.StatusConflict, Message: msg}
}

// Shared auth failures. Login and refresh deliberately reuse the same generic
// messages so callers cannot distinguish a wrong password from an unknown
// email, or a forged token from a revoked one.
var (
	ErrEmailTaken         = conflict("Email already registered")
	ErrInvalidCredentials = unauthorized("Invalid credentials")
	ErrInvalidOTP         = unauthorized("Invalid OTP")
	ErrOTPExpired         = unauthorized("OTP expired")
	ErrInvalidRefresh     = unauthorized("Invalid refresh token")
	ErrRefreshExpired     = unauthorized("Refresh token expired")
	ErrInvalidSession     = unauthorized("Invalid session")
)
