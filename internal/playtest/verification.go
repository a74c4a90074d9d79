package playtest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
)

// ErrInconsistent is returned when the leaderboard disagrees with the
// sessions that were just played.
var ErrInconsistent = errors.New("leaderboard inconsistent with played sessions")

// verifyResults checks that the board is ordered and that every bot that
// completed a scoring session is listed at least as high as it scored,
// provided the board had room for it.
func verifyResults(results []PlayerResult, board []types.Entry, topN int) error {
	var problems []string

	for i, e := range board {
		if e.Rank != i+1 {
			problems = append(problems, fmt.Sprintf("entry %d has rank %d", i, e.Rank))
		}
		if i > 0 && e.Score > board[i-1].Score {
			problems = append(problems, fmt.Sprintf("%s (%d) ranked below %s (%d)", e.Name, e.Score, board[i-1].Name, board[i-1].Score))
		}
	}

	listed := make(map[string]types.Entry, len(board))
	for _, e := range board {
		listed[strings.ToLower(e.Name)] = e
	}
	full := len(board) >= topN
	for _, r := range results {
		if r.State != "completed" || r.Score == 0 {
			continue
		}
		e, ok := listed[strings.ToLower(r.Name)]
		switch {
		case !ok && full && r.Score <= board[len(board)-1].Score:
			// pushed off the visible page
		case !ok:
			problems = append(problems, fmt.Sprintf("%s scored %d but is missing", r.Name, r.Score))
		case e.Score < r.Score:
			problems = append(problems, fmt.Sprintf("%s scored %d but is listed with %d", r.Name, r.Score, e.Score))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInconsistent, strings.Join(problems, "; "))
	}
	return nil
}
