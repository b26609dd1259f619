package service

import "errors"

var (
	// ErrUnauthorized covers both an unknown username and a wrong password.
	// One message for both shapes keeps account enumeration harder.
	ErrUnauthorized = errors.New("incorrect username or password")
	// ErrLoginFailed is the generic error surfaced when the login transaction
	// rolls back. Details stay in the server log.
	ErrLoginFailed = errors.New("login failed")
	// ErrRefreshTokenInvalid means the presented refresh token is unknown,
	// already rotated, or bound to a different device.
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	// ErrRefreshTokenExpired means the token row exists but is past expiry;
	// the client must re-authenticate with credentials.
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	ErrUsernameTaken = errors.New("username already exists")
	ErrBadUsername   = errors.New("username must be 3-20 letters, digits or underscores")
	ErrBadPassword   = errors.New("password must be at least 6 characters")
)
