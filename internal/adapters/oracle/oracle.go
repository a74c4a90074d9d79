// Package oracle asks an external judge for a single accuracy value once a
// subject has held a plausible pose.
package oracle

import (
	"context"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// Request carries what a judge needs to rate one attempt.
type Request struct {
	Image                []byte
	Pose                 *model.Pose
	ChallengeID          string
	ChallengeName        string
	ChallengeDescription string
}

// Judge returns an accuracy in 0..100, honoring ctx for cancellation.
type Judge interface {
	Judge(ctx context.Context, req Request) (int, error)
}
