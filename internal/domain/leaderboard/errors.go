package leaderboard

import "errors"

var (
	// ErrCorruptState is returned by Decode when the stored blob is not a JSON array.
	ErrCorruptState = errors.New("corrupt leaderboard state")
	// ErrInvalidWindow is returned by ParseWindow for unknown names.
	ErrInvalidWindow = errors.New("invalid leaderboard window")
)
