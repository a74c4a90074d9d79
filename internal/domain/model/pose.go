package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Confidence floors for treating a joint as present.
const (
	MinJointConfidence   = 0.35 // geometry
	MinQualityConfidence = 0.30 // skeleton and plausibility signals
)

// JointName identifies one of the 17 tracked body landmarks.
type JointName string

// Landmarks in tracker order.
const (
	Nose          JointName = "nose"
	LeftEye       JointName = "left_eye"
	RightEye      JointName = "right_eye"
	LeftEar       JointName = "left_ear"
	RightEar      JointName = "right_ear"
	LeftShoulder  JointName = "left_shoulder"
	RightShoulder JointName = "right_shoulder"
	LeftElbow     JointName = "left_elbow"
	RightElbow    JointName = "right_elbow"
	LeftWrist     JointName = "left_wrist"
	RightWrist    JointName = "right_wrist"
	LeftHip       JointName = "left_hip"
	RightHip      JointName = "right_hip"
	LeftKnee      JointName = "left_knee"
	RightKnee     JointName = "right_knee"
	LeftAnkle     JointName = "left_ankle"
	RightAnkle    JointName = "right_ankle"
)

// JointNames lists every landmark in tracker order.
var JointNames = []JointName{
	Nose, LeftEye, RightEye, LeftEar, RightEar,
	LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist,
	LeftHip, RightHip, LeftKnee, RightKnee, LeftAnkle, RightAnkle,
}

// ParseJointName accepts snake_case or camelCase landmark names.
func ParseJointName(s string) (JointName, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, n := range JointNames {
		if norm == string(n) || norm == strings.ReplaceAll(string(n), "_", "") {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJoint, s)
}

// UnmarshalJSON validates the landmark name.
func (n *JointName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseJointName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Joint is a single 2-D landmark in pixel coordinates.
type Joint struct {
	Name       JointName `json:"name"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Confidence float64   `json:"confidence"`
}

// Pose is the set of joints sampled at one instant, keyed by name.
type Pose struct {
	joints map[JointName]Joint
}

// NewPose builds a pose; a later joint with the same name replaces an earlier one.
func NewPose(joints ...Joint) *Pose {
	p := &Pose{joints: make(map[JointName]Joint, len(joints))}
	for _, j := range joints {
		p.joints[j.Name] = j
	}
	return p
}

// Joint returns the raw joint regardless of confidence.
func (p *Pose) Joint(name JointName) (Joint, bool) {
	if p == nil {
		return Joint{}, false
	}
	j, ok := p.joints[name]
	return j, ok
}

// Usable returns the joint only when its confidence reaches minConfidence.
func (p *Pose) Usable(name JointName, minConfidence float64) (Joint, bool) {
	j, ok := p.Joint(name)
	if !ok || j.Confidence < minConfidence {
		return Joint{}, false
	}
	return j, true
}

// Len reports how many joints the pose carries.
func (p *Pose) Len() int {
	if p == nil {
		return 0
	}
	return len(p.joints)
}

// Joints returns the joints in tracker order.
func (p *Pose) Joints() []Joint {
	if p == nil {
		return nil
	}
	out := make([]Joint, 0, len(p.joints))
	for _, n := range JointNames {
		if j, ok := p.joints[n]; ok {
			out = append(out, j)
		}
	}
	return out
}
