package service

import "errors"

// Domain errors. Handlers map these to HTTP statuses; anything else
// becomes a 500 with a generic message.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrCaptcha            = errors.New("captcha verification failed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUpload             = errors.New("invalid upload")
)
