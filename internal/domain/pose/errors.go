package pose

import "errors"

// Sentinel kinds for challenge errors.
var (
	ErrUnknownChallenge = errors.New("unknown challenge")
)
