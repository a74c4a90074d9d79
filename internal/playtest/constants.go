package playtest

import "time"

// Defaults for a play run.
const (
	DefaultPlayers       = 4
	DefaultSkill         = 0.8
	DefaultTopN          = 10
	DefaultFrameInterval = 30 * time.Millisecond
	DefaultTimeout       = 5 * time.Second
	DefaultRoundTime     = 3 * time.Second
	DefaultHold          = 300 * time.Millisecond
)

// sessionWait bounds how long a bot plays before giving up.
const sessionWait = 5 * time.Minute
