package pose

import (
	"math"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/geometry"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// Built-in challenge ids.
const (
	TPose       = "t_pose"
	HandsUp     = "hands_up"
	Squat       = "squat"
	TreePose    = "tree_pose"
	LeanLeft    = "lean_left"
	LeanRight   = "lean_right"
	HandsOnHips = "hands_on_hips"
	Star        = "star"
)

// Builtin returns the standard challenge set.
func Builtin() []Challenge {
	return []Challenge{
		{ID: TPose, DisplayName: "T-Pose", Description: "Stretch both arms out sideways at shoulder height.", Validate: validateTPose},
		{ID: HandsUp, DisplayName: "Hands Up", Description: "Raise both arms straight above your head.", Validate: validateHandsUp},
		{ID: Squat, DisplayName: "Squat", Description: "Bend your knees and drop your hips toward knee height.", Validate: validateSquat},
		{ID: TreePose, DisplayName: "Tree Pose", Description: "Balance on one leg with the other foot against your standing knee.", Validate: validateTreePose},
		{ID: LeanLeft, DisplayName: "Lean Left", Description: "Keep your hips still and lean your upper body to your left.", Validate: validateLeanLeft},
		{ID: LeanRight, DisplayName: "Lean Right", Description: "Keep your hips still and lean your upper body to your right.", Validate: validateLeanRight},
		{ID: HandsOnHips, DisplayName: "Hands on Hips", Description: "Place both hands on your hips with elbows pointing out.", Validate: validateHandsOnHips},
		{ID: Star, DisplayName: "Star Jump", Description: "Arms up and wide, feet wide apart.", Validate: validateStar},
	}
}

// DefaultRegistry returns a registry of the built-in challenges.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtin()...)
}

// joints resolves every name or reports false if any is unusable.
func joints(p *model.Pose, names ...model.JointName) (map[model.JointName]model.Joint, bool) {
	out := make(map[model.JointName]model.Joint, len(names))
	for _, n := range names {
		j, ok := p.Usable(n, model.MinJointConfidence)
		if !ok {
			return nil, false
		}
		out[n] = j
	}
	return out, true
}

func validateTPose(p *model.Pose) int {
	j, ok := joints(p,
		model.LeftShoulder, model.RightShoulder,
		model.LeftElbow, model.RightElbow,
		model.LeftWrist, model.RightWrist)
	if !ok {
		return 0
	}
	scale := geometry.BodyScale(p)

	span := geometry.Distance(j[model.LeftWrist], j[model.RightWrist]) / scale
	drift := (math.Abs(j[model.LeftWrist].Y-j[model.LeftShoulder].Y) +
		math.Abs(j[model.RightWrist].Y-j[model.RightShoulder].Y)) / 2 / scale
	elbow := (geometry.AngleAtVertex(j[model.LeftShoulder], j[model.LeftElbow], j[model.LeftWrist]) +
		geometry.AngleAtVertex(j[model.RightShoulder], j[model.RightElbow], j[model.RightWrist])) / 2

	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(span, 2.0, 3.5), Weight: 0.5},
		geometry.Weighted{Score: geometry.ScoreFromRatio(drift, 0.8, 0.15), Weight: 0.3},
		geometry.Weighted{Score: geometry.ScoreFromRatio(elbow, 120, 165), Weight: 0.2},
	)
}

func validateHandsUp(p *model.Pose) int {
	j, ok := joints(p,
		model.Nose,
		model.LeftShoulder, model.RightShoulder,
		model.LeftElbow, model.RightElbow,
		model.LeftWrist, model.RightWrist)
	if !ok {
		return 0
	}
	scale := geometry.BodyScale(p)

	// image y grows downward; the lower wrist governs
	lift := math.Min(j[model.Nose].Y-j[model.LeftWrist].Y, j[model.Nose].Y-j[model.RightWrist].Y) / scale
	elbow := (geometry.AngleAtVertex(j[model.LeftShoulder], j[model.LeftElbow], j[model.LeftWrist]) +
		geometry.AngleAtVertex(j[model.RightShoulder], j[model.RightElbow], j[model.RightWrist])) / 2

	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(lift, 0, 0.8), Weight: 0.7},
		geometry.Weighted{Score: geometry.ScoreFromRatio(elbow, 120, 160), Weight: 0.3},
	)
}

func validateSquat(p *model.Pose) int {
	j, ok := joints(p,
		model.LeftHip, model.RightHip,
		model.LeftKnee, model.RightKnee,
		model.LeftAnkle, model.RightAnkle)
	if !ok {
		return 0
	}
	scale := geometry.BodyScale(p)

	bend := (geometry.AngleAtVertex(j[model.LeftHip], j[model.LeftKnee], j[model.LeftAnkle]) +
		geometry.AngleAtVertex(j[model.RightHip], j[model.RightKnee], j[model.RightAnkle])) / 2
	drop := ((j[model.LeftKnee].Y - j[model.LeftHip].Y) + (j[model.RightKnee].Y - j[model.RightHip].Y)) / 2 / scale

	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(bend, 165, 100), Weight: 0.7},
		geometry.Weighted{Score: geometry.ScoreFromRatio(drop, 1.0, 0.3), Weight: 0.3},
	)
}

func validateTreePose(p *model.Pose) int {
	j, ok := joints(p,
		model.LeftHip, model.RightHip,
		model.LeftKnee, model.RightKnee,
		model.LeftAnkle, model.RightAnkle)
	if !ok {
		return 0
	}
	scale := geometry.BodyScale(p)

	raised, standingKnee := j[model.LeftAnkle], j[model.RightKnee]
	if j[model.RightAnkle].Y < j[model.LeftAnkle].Y {
		raised, standingKnee = j[model.RightAnkle], j[model.LeftKnee]
	}
	lift := math.Abs(j[model.LeftAnkle].Y-j[model.RightAnkle].Y) / scale
	tuck := geometry.Distance(raised, standingKnee) / scale

	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(lift, 0.2, 0.8), Weight: 0.7},
		geometry.Weighted{Score: geometry.ScoreFromRatio(tuck, 1.2, 0.5), Weight: 0.3},
	)
}

// lean returns the torso's lateral offset and shoulder tilt toward the
// subject's left, both scale-relative. Mirrored frames are handled by
// orienting along the right-hip -> left-hip direction.
func lean(p *model.Pose) (offset, tilt float64, ok bool) {
	j, ok := joints(p, model.LeftShoulder, model.RightShoulder, model.LeftHip, model.RightHip)
	if !ok {
		return 0, 0, false
	}
	scale := geometry.BodyScale(p)
	side := 1.0
	if j[model.LeftHip].X < j[model.RightHip].X {
		side = -1
	}
	shoulders := geometry.Midpoint(j[model.LeftShoulder], j[model.RightShoulder])
	hips := geometry.Midpoint(j[model.LeftHip], j[model.RightHip])
	offset = (shoulders.X - hips.X) * side / scale
	tilt = (j[model.LeftShoulder].Y - j[model.RightShoulder].Y) / scale
	return offset, tilt, true
}

func validateLeanLeft(p *model.Pose) int {
	offset, tilt, ok := lean(p)
	if !ok {
		return 0
	}
	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(offset, 0.1, 0.6), Weight: 0.7},
		geometry.Weighted{Score: geometry.ScoreFromRatio(tilt, 0.05, 0.4), Weight: 0.3},
	)
}

func validateLeanRight(p *model.Pose) int {
	offset, tilt, ok := lean(p)
	if !ok {
		return 0
	}
	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(-offset, 0.1, 0.6), Weight: 0.7},
		geometry.Weighted{Score: geometry.ScoreFromRatio(-tilt, 0.05, 0.4), Weight: 0.3},
	)
}

func validateHandsOnHips(p *model.Pose) int {
	j, ok := joints(p,
		model.LeftShoulder, model.RightShoulder,
		model.LeftElbow, model.RightElbow,
		model.LeftWrist, model.RightWrist,
		model.LeftHip, model.RightHip)
	if !ok {
		return 0
	}
	scale := geometry.BodyScale(p)

	reach := (geometry.Distance(j[model.LeftWrist], j[model.LeftHip]) +
		geometry.Distance(j[model.RightWrist], j[model.RightHip])) / 2 / scale
	elbow := (geometry.AngleAtVertex(j[model.LeftShoulder], j[model.LeftElbow], j[model.LeftWrist]) +
		geometry.AngleAtVertex(j[model.RightShoulder], j[model.RightElbow], j[model.RightWrist])) / 2

	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(reach, 0.8, 0.25), Weight: 0.7},
		geometry.Weighted{Score: geometry.ScoreFromRatio(elbow, 160, 100), Weight: 0.3},
	)
}

func validateStar(p *model.Pose) int {
	j, ok := joints(p,
		model.LeftShoulder, model.RightShoulder,
		model.LeftWrist, model.RightWrist,
		model.LeftHip, model.RightHip,
		model.LeftAnkle, model.RightAnkle)
	if !ok {
		return 0
	}
	scale := geometry.BodyScale(p)

	raise := math.Min(j[model.LeftShoulder].Y-j[model.LeftWrist].Y, j[model.RightShoulder].Y-j[model.RightWrist].Y) / scale
	span := geometry.Distance(j[model.LeftWrist], j[model.RightWrist]) / scale
	stance := geometry.Distance(j[model.LeftAnkle], j[model.RightAnkle]) / scale

	return geometry.Combine(
		geometry.Weighted{Score: geometry.ScoreFromRatio(raise, 0, 0.6), Weight: 0.4},
		geometry.Weighted{Score: geometry.ScoreFromRatio(span, 2.0, 3.0), Weight: 0.3},
		geometry.Weighted{Score: geometry.ScoreFromRatio(stance, 1.0, 2.0), Weight: 0.3},
	)
}
