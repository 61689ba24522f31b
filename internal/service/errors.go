package service

import "errors"

// Domain errors surfaced to handlers.
var (
	ErrIndexNotFound      = errors.New("pax index not found")
	ErrIndexInvalid       = errors.New("pax index failed validation")
	ErrInvalidTime        = errors.New("invalid time")
	ErrClassNotFound      = errors.New("class not found")
	ErrInvalidConversion  = errors.New("conversion not possible")
	ErrNoLastUsed         = errors.New("no saved calculator state")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotFound      = errors.New("admin not found")
)
