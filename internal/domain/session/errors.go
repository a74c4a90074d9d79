package session

import "errors"

var (
	// ErrInvalidPlayerName is returned when the trimmed player name is empty.
	ErrInvalidPlayerName = errors.New("invalid player name")
	// ErrNoChallenges is returned when a session is created without rounds.
	ErrNoChallenges = errors.New("session needs at least one challenge")
	// ErrAlreadyStarted is returned by Start on a session that left the pending state.
	ErrAlreadyStarted = errors.New("session already started")
)
