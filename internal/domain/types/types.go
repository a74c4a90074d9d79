// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// Entry represents a ranked leaderboard entry
type Entry struct {
	Rank      int       `json:"rank"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Accuracy  int       `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	Attempts  int       `json:"attempts"`
}

// Challenge describes a pose players can be asked to hold
type Challenge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StartSessionRequest is the body of POST /sessions
type StartSessionRequest struct {
	PlayerName string   `json:"player_name"`
	Challenges []string `json:"challenges,omitempty"`
}

// SampleRequest is one tracker frame posted by a capture client. An empty
// joint list means no body was detected.
type SampleRequest struct {
	Joints    []model.Joint `json:"joints"`
	Plausible *bool         `json:"plausible,omitempty"`
	Image     []byte        `json:"image,omitempty"`
}

// Sample converts the request into a tracker sample.
func (r SampleRequest) Sample() model.Sample {
	s := model.Sample{Plausible: r.Plausible, Image: r.Image}
	if len(r.Joints) > 0 {
		s.Pose = model.NewPose(r.Joints...)
	}
	return s
}

// SampleResponse reports whether a posted sample was taken.
type SampleResponse struct {
	Accepted bool `json:"accepted"`
}
