package repository

import "errors"

var (
	// ErrUserNotFound means no active account matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound means no refresh token row matched, or a conditional
	// rotate lost to a concurrent redeem of the same value.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrSettingMissing means the site settings row does not exist yet.
	ErrSettingMissing = errors.New("settings row missing")
	// ErrCaptchaNotFound means the captcha id is unknown or already consumed.
	ErrCaptchaNotFound = errors.New("captcha not found")
)
