package usecase

import (
	"errors"
	"fmt"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("auth use case persistence error")

var (
	// ErrInvalidCredentials is returned on any login mismatch. It does not
	// distinguish "no such user" from "wrong password" so the endpoint
	// cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidOrExpiredCode covers every verification failure: unknown
	// email, wrong code, expired or already-consumed record.
	ErrInvalidOrExpiredCode = errors.New("auth: invalid or expired code")

	ErrEmailTaken    = errors.New("auth: email already registered")
	ErrUsernameTaken = errors.New("auth: username already registered")
)
