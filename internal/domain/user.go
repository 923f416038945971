package domain

import (
	"errors"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// User is owned by the user directory. This service only ever reads it.
type User struct {
	ID           string
	ReferralCode string
	FirstName    string
	LastName     string
	Email        string
}
