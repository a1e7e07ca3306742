package services

import "errors"

// Error classes the progress core reports. Storage errors from gorm are
// propagated unwrapped and match none of these. Controllers classify
// with errors.Is and map to HTTP statuses.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
)
