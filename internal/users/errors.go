package users

import "errors"

var (
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidOTP          = errors.New("invalid or expired OTP")
	ErrOTPAttemptsExceeded = errors.New("max OTP verify attempts exceeded")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
)
