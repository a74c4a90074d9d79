// Package quality judges whether a tracked body is plausible enough to score:
// the whole body is in frame and the tracker is confident (a proxy for
// lighting).
package quality

import "github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"

// Thresholds for the lighting proxy.
const (
	minVisibleJoints  = 12
	minMeanConfidence = 0.5
)

// Report summarizes one pose's quality signals.
type Report struct {
	VisibleJoints  int     `json:"visible_joints"`
	MeanConfidence float64 `json:"mean_confidence"`
	FullBody       bool    `json:"full_body"`
	GoodLighting   bool    `json:"good_lighting"`
	Plausible      bool    `json:"plausible"`
}

// fullBody lists the joints that must be visible; at least one ankle is also required.
var fullBody = []model.JointName{
	model.Nose, model.LeftShoulder, model.RightShoulder, model.LeftHip, model.RightHip,
}

// Assess reports on p. A nil pose is never plausible.
func Assess(p *model.Pose) Report {
	var r Report
	if p == nil {
		return r
	}

	var sum float64
	for _, j := range p.Joints() {
		if j.Confidence >= model.MinQualityConfidence {
			r.VisibleJoints++
			sum += j.Confidence
		}
	}
	if r.VisibleJoints > 0 {
		r.MeanConfidence = sum / float64(r.VisibleJoints)
	}

	r.FullBody = true
	for _, n := range fullBody {
		if _, ok := p.Usable(n, model.MinQualityConfidence); !ok {
			r.FullBody = false
			break
		}
	}
	_, left := p.Usable(model.LeftAnkle, model.MinQualityConfidence)
	_, right := p.Usable(model.RightAnkle, model.MinQualityConfidence)
	r.FullBody = r.FullBody && (left || right)

	r.GoodLighting = r.VisibleJoints >= minVisibleJoints && r.MeanConfidence >= minMeanConfidence
	r.Plausible = r.FullBody && r.GoodLighting
	return r
}
