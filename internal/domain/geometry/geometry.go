// Package geometry provides the vector and angle primitives validators are
// built from. Every function is pure.
package geometry

import (
	"math"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
)

// FallbackScale is used when neither shoulders nor hips are usable.
const FallbackScale = 100.0

// maxAccuracy is the top of the accuracy range.
const maxAccuracy = 100

// Point is a 2-D pixel coordinate.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b model.Joint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b model.Joint) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// AngleAtVertex returns the angle in degrees at b between the rays b->a and b->c.
// A zero-length ray reads as a straight limb (180).
func AngleAtVertex(a, b, c model.Joint) float64 {
	abx, aby := a.X-b.X, a.Y-b.Y
	cbx, cby := c.X-b.X, c.Y-b.Y
	la := math.Hypot(abx, aby)
	lc := math.Hypot(cbx, cby)
	if la == 0 || lc == 0 {
		return 180
	}
	cos := (abx*cbx + aby*cby) / (la * lc)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// BodyScale returns the normalization length for a pose: shoulder width,
// then hip width, then FallbackScale.
func BodyScale(p *model.Pose) float64 {
	if d, ok := pairDistance(p, model.LeftShoulder, model.RightShoulder); ok {
		return d
	}
	if d, ok := pairDistance(p, model.LeftHip, model.RightHip); ok {
		return d
	}
	return FallbackScale
}

func pairDistance(p *model.Pose, a, b model.JointName) (float64, bool) {
	ja, okA := p.Usable(a, model.MinJointConfidence)
	jb, okB := p.Usable(b, model.MinJointConfidence)
	if !okA || !okB {
		return 0, false
	}
	d := Distance(ja, jb)
	if d <= 0 {
		return 0, false
	}
	return d, true
}

// Clamp01 limits x to [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ScoreFromRatio maps ratio linearly onto [0,100] where lo scores 0 and hi
// scores 100, saturating outside the band. lo > hi expresses "smaller is better".
func ScoreFromRatio(ratio, lo, hi float64) float64 {
	if hi == lo {
		if ratio >= hi {
			return maxAccuracy
		}
		return 0
	}
	return Lerp(0, maxAccuracy, Clamp01((ratio-lo)/(hi-lo)))
}

// Weighted is one sub-score and its weight.
type Weighted struct {
	Score  float64
	Weight float64
}

// Combine returns the weighted sum of sub-scores as an int accuracy in [0,100].
func Combine(parts ...Weighted) int {
	var total float64
	for _, p := range parts {
		total += p.Score * p.Weight
	}
	return ClampAccuracy(int(math.Round(total)))
}

// ClampAccuracy limits an accuracy to [0,100].
func ClampAccuracy(a int) int {
	if a < 0 {
		return 0
	}
	if a > maxAccuracy {
		return maxAccuracy
	}
	return a
}
