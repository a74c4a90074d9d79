// Package synth produces synthetic tracker output: canonical keypoint layouts
// for every built-in challenge and a scripted tracker that replays them.
package synth

import (
	"math/rand"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// Layout names. Challenge layouts share the challenge id.
const (
	Neutral     = "neutral"
	TPose       = "t_pose"
	HandsUp     = "hands_up"
	Squat       = "squat"
	TreePose    = "tree_pose"
	LeanLeft    = "lean_left"
	LeanRight   = "lean_right"
	HandsOnHips = "hands_on_hips"
	Star        = "star"
	Away        = "away" // nobody in frame
)

type xy [2]float64

// neutral is a front-facing subject standing with arms down. Shoulders are
// 100px apart; the subject's left side has the larger x.
var neutral = map[model.JointName]xy{
	model.Nose:          {300, 200},
	model.LeftEye:       {310, 190},
	model.RightEye:      {290, 190},
	model.LeftEar:       {320, 195},
	model.RightEar:      {280, 195},
	model.LeftShoulder:  {350, 280},
	model.RightShoulder: {250, 280},
	model.LeftElbow:     {360, 380},
	model.RightElbow:    {240, 380},
	model.LeftWrist:     {365, 470},
	model.RightWrist:    {235, 470},
	model.LeftHip:       {335, 480},
	model.RightHip:      {265, 480},
	model.LeftKnee:      {335, 600},
	model.RightKnee:     {265, 600},
	model.LeftAnkle:     {335, 720},
	model.RightAnkle:    {265, 720},
}

// overrides lists the joints that differ from neutral for each layout.
var overrides = map[string]map[model.JointName]xy{
	Neutral: {},
	TPose: {
		model.LeftElbow: {450, 280}, model.RightElbow: {150, 280},
		model.LeftWrist: {550, 280}, model.RightWrist: {50, 280},
	},
	HandsUp: {
		model.LeftElbow: {355, 185}, model.RightElbow: {245, 185},
		model.LeftWrist: {360, 90}, model.RightWrist: {240, 90},
	},
	Squat: {
		model.Nose: {300, 300}, model.LeftEye: {310, 290}, model.RightEye: {290, 290},
		model.LeftEar: {320, 295}, model.RightEar: {280, 295},
		model.LeftShoulder: {350, 380}, model.RightShoulder: {250, 380},
		model.LeftElbow: {360, 480}, model.RightElbow: {240, 480},
		model.LeftWrist: {365, 560}, model.RightWrist: {235, 560},
		model.LeftHip: {335, 580}, model.RightHip: {265, 580},
		model.LeftKnee: {395, 620}, model.RightKnee: {205, 620},
	},
	TreePose: {
		model.LeftElbow: {340, 350}, model.RightElbow: {260, 350},
		model.LeftWrist: {300, 330}, model.RightWrist: {300, 330},
		model.LeftKnee: {380, 560}, model.LeftAnkle: {285, 600},
	},
	LeanLeft: {
		model.Nose: {380, 200}, model.LeftEye: {390, 190}, model.RightEye: {370, 190},
		model.LeftEar: {400, 195}, model.RightEar: {360, 195},
		model.LeftShoulder: {430, 300}, model.RightShoulder: {330, 260},
		model.LeftElbow: {440, 400}, model.RightElbow: {320, 360},
		model.LeftWrist: {445, 480}, model.RightWrist: {315, 450},
	},
	LeanRight: {
		model.Nose: {220, 200}, model.LeftEye: {230, 190}, model.RightEye: {210, 190},
		model.LeftEar: {240, 195}, model.RightEar: {200, 195},
		model.LeftShoulder: {270, 260}, model.RightShoulder: {170, 300},
		model.LeftElbow: {280, 360}, model.RightElbow: {160, 400},
		model.LeftWrist: {285, 450}, model.RightWrist: {155, 480},
	},
	HandsOnHips: {
		model.LeftElbow: {410, 380}, model.RightElbow: {190, 380},
		model.LeftWrist: {340, 470}, model.RightWrist: {260, 470},
	},
	Star: {
		model.LeftElbow: {420, 210}, model.RightElbow: {180, 210},
		model.LeftWrist: {480, 150}, model.RightWrist: {120, 150},
		model.LeftKnee: {370, 600}, model.RightKnee: {230, 600},
		model.LeftAnkle: {400, 720}, model.RightAnkle: {200, 720},
	},
}

// Layouts returns the names of all known layouts except Away.
func Layouts() []string {
	return []string{Neutral, TPose, HandsUp, Squat, TreePose, LeanLeft, LeanRight, HandsOnHips, Star}
}

// Option tweaks a generated pose.
type Option func(*poseOpts)

type poseOpts struct {
	confidence float64
	jitter     float64
	rng        *rand.Rand
	drop       map[model.JointName]bool
	scale      float64
	offsetX    float64
	offsetY    float64
}

// WithConfidence sets the confidence of every joint.
func WithConfidence(c float64) Option {
	return func(o *poseOpts) { o.confidence = c }
}

// WithJitter adds uniform noise of +/- px to every coordinate.
func WithJitter(px float64, rng *rand.Rand) Option {
	return func(o *poseOpts) {
		if px > 0 && rng != nil {
			o.jitter = px
			o.rng = rng
		}
	}
}

// WithoutJoints omits the named joints.
func WithoutJoints(names ...model.JointName) Option {
	return func(o *poseOpts) {
		for _, n := range names {
			o.drop[n] = true
		}
	}
}

// WithTransform scales the layout about the origin and then translates it.
func WithTransform(scale, dx, dy float64) Option {
	return func(o *poseOpts) {
		if scale > 0 {
			o.scale = scale
		}
		o.offsetX, o.offsetY = dx, dy
	}
}

// Pose builds the named layout. Unknown names and Away return nil.
func Pose(layout string, opts ...Option) *model.Pose {
	over, ok := overrides[layout]
	if !ok {
		return nil
	}
	o := poseOpts{confidence: 0.9, scale: 1, drop: map[model.JointName]bool{}}
	for _, opt := range opts {
		opt(&o)
	}

	joints := make([]model.Joint, 0, len(model.JointNames))
	for _, name := range model.JointNames {
		if o.drop[name] {
			continue
		}
		p := neutral[name]
		if v, ok := over[name]; ok {
			p = v
		}
		x, y := p[0]*o.scale+o.offsetX, p[1]*o.scale+o.offsetY
		if o.rng != nil {
			x += (o.rng.Float64()*2 - 1) * o.jitter
			y += (o.rng.Float64()*2 - 1) * o.jitter
		}
		joints = append(joints, model.Joint{Name: name, X: x, Y: y, Confidence: o.confidence})
	}
	return model.NewPose(joints...)
}
