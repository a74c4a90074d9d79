package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownJoint = errors.New("unknown joint name")
)
