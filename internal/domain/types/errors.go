package types

import "errors"

// Error kinds shared between the service and its transports.
var (
	ErrNotFound = errors.New("not found")
	ErrCapacity = errors.New("capacity exceeded")
)
