// Package playtest drives synthetic players through pose sessions, either
// in-process or against a running server, and checks the leaderboard they
// leave behind.
package playtest

import (
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
)

// Config holds configuration for a play run.
type Config struct {
	BaseURL       string        // Server to play against; empty runs in-process
	Players       int           // Number of concurrent bots
	Skill         float64       // Probability a bot mirrors a round's challenge
	Challenges    []string      // Challenge ids per session; empty draws from the server
	RoundTime     time.Duration // In-process round time limit
	Hold          time.Duration // In-process hold duration
	Mode          string        // In-process scoring mode: geometric or oracle
	Store         string        // In-process store backend
	StorePath     string        // In-process store path
	FrameInterval time.Duration // Delay between frames a bot sends
	Timeout       time.Duration // HTTP request timeout
	TopN          int           // Leaderboard entries to fetch
	Seed          int64         // Seeds every bot's choices
	OutputFile    string        // Optional JSON report path
	Verbose       bool          // Log every resolved session
}

// PlayerResult is how one bot's session ended.
type PlayerResult struct {
	Name       string `json:"name"`
	SessionID  string `json:"session_id"`
	State      string `json:"state"`
	Score      int    `json:"score"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Accuracies []int  `json:"accuracies"`
	Error      string `json:"error,omitempty"`
}

// Report is the outcome of a run.
type Report struct {
	Results     []PlayerResult `json:"results"`
	Leaderboard []types.Entry  `json:"leaderboard"`
	Stats       Stats          `json:"stats"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersStarted   int           `json:"players_started"`
	PlayersCompleted int           `json:"players_completed"`
	PlayersFailed    int           `json:"players_failed"`
	SamplesSent      int64         `json:"samples_sent"`
	SamplesRefused   int64         `json:"samples_refused"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
}
