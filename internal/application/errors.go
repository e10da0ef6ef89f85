package application

import "errors"

// Recoverable flow errors. Handlers re-render the originating form for these;
// anything else is an infrastructure failure.
var (
	ErrInvalidUsername      = errors.New("invalid username")
	ErrMissingContact       = errors.New("email and phone are required")
	ErrUsernameTaken        = errors.New("username taken")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPhoneTaken           = errors.New("phone already registered")
	ErrInvalidPassphrase    = errors.New("invalid passphrase")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrRegistrationNotFound = errors.New("pending registration not found")
	ErrAccountExists        = errors.New("account already exists")
	ErrUserNotRegistered    = errors.New("user not registered")
	ErrInvalidPassword      = errors.New("invalid password")
)
