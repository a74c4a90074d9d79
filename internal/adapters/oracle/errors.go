package oracle

import "errors"

var (
	// ErrUnavailable wraps every failure to obtain a judgement. Callers score
	// the round as accuracy 0.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrUnknownChallenge is returned by Simulated for challenges it cannot score.
	ErrUnknownChallenge = errors.New("oracle: unknown challenge")
)
