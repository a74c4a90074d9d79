// Package model contains domain models passed between layers.
package model

import "time"

// EventKind tags the payload carried by an Event.
type EventKind int

// Event kinds accepted by a session's update queue.
const (
	EventSample     EventKind = iota + 1 // fresh tracker output
	EventTick                            // periodic deadline check
	EventJudgement                       // external judge returned (or failed)
)

// String returns a stable label for logs and metrics.
func (k EventKind) String() string {
	switch k {
	case EventSample:
		return "sample"
	case EventTick:
		return "tick"
	case EventJudgement:
		return "judgement"
	default:
		return "unknown"
	}
}

// Event is the envelope flowing through a session's serialized update queue.
// Exactly one of the payload groups is meaningful, selected by Kind.
type Event struct {
	Kind EventKind
	At   time.Time // when the event was produced

	// EventSample
	Sample Sample

	// EventJudgement
	RoundID  string
	Accuracy int
	Err      error
}

// Sample is one tracker output.
type Sample struct {
	Pose       *Pose     // nil when no usable body was detected
	Plausible  *bool     // capture-surface verdict; nil means "assess from the pose"
	Image      []byte    // optional frame snapshot for the external judge
	CapturedAt time.Time // tracker timestamp
}
