package playtest

import "os"

// ShowHelp prints usage information for the play tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Pose Arena Play Tool
====================

Plays synthetic players through pose sessions and checks the leaderboard.
Without -url the game runs in-process; with -url the bots post frames to a
running server.

Usage:
  go run ./cmd/play [options]

Options:
  -url string
        Server to play against (default: play in-process)
  -players int
        Number of concurrent players (default 4)
  -skill float
        Chance a player mirrors each challenge, 0..1 (default 0.8)
  -challenges string
        Comma separated challenge ids (default: drawn per session)
  -round duration
        In-process round time limit (default 3s)
  -hold duration
        In-process hold duration (default 300ms)
  -mode string
        In-process scoring mode: geometric or oracle (default "geometric")
  -store string
        In-process store backend: memory, file or sqlite (default "memory")
  -store-path string
        In-process store path
  -frame duration
        Delay between frames (default 30ms)
  -timeout duration
        HTTP request timeout (default 5s)
  -top int
        Leaderboard entries to fetch (default 10)
  -seed int
        Seed for player choices (default: current time)
  -output string
        Write a JSON report to this file
  -verbose
        Log every finished player
  -help
        Show this help message

Examples:
  # Four in-process players with perfect form
  go run ./cmd/play -skill 1

  # Eight players against a local server
  go run ./cmd/play -url http://localhost:9080 -players 8
`)
}
