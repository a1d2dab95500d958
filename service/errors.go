package service

import "errors"

// Domain errors surfaced to the HTTP layer, which maps them to status
// codes. Store failures are wrapped with %w instead and treated as 500s.
var (
	ErrInvalidChange = errors.New("invalid points change")
	ErrInvalidInput  = errors.New("invalid input")

	ErrUserNotFound         = errors.New("user not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrStationNotFound      = errors.New("station not found")
	ErrFuelTypeNotFound     = errors.New("fuel not found")
	ErrAddressNotFound      = errors.New("address not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrEmailTaken        = errors.New("email already in use")
	ErrFuelTypeExists    = errors.New("fuel type already exists")
	ErrBadCredentials    = errors.New("invalid credentials")
	ErrInvalidToken      = errors.New("invalid refresh token")
	ErrOrderNotDelivered = errors.New("cannot rate before delivery")
	ErrInvalidStatus     = errors.New("invalid status")
)
