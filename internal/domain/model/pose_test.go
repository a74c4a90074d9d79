package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestPose(t *testing.T) {
	convey.Convey("Given a pose with mixed confidence joints", t, func() {
		p := model.NewPose(
			model.Joint{Name: model.LeftShoulder, X: 10, Y: 20, Confidence: 0.9},
			model.Joint{Name: model.RightShoulder, X: 30, Y: 20, Confidence: 0.32},
		)

		convey.Convey("When looking up joints for geometry", func() {
			_, leftOK := p.Usable(model.LeftShoulder, model.MinJointConfidence)
			_, rightOK := p.Usable(model.RightShoulder, model.MinJointConfidence)
			_, missingOK := p.Usable(model.Nose, model.MinJointConfidence)

			convey.Convey("Then low confidence joints are treated as absent", func() {
				convey.So(leftOK, convey.ShouldBeTrue)
				convey.So(rightOK, convey.ShouldBeFalse)
				convey.So(missingOK, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When looking up joints for quality signals", func() {
			_, rightOK := p.Usable(model.RightShoulder, model.MinQualityConfidence)

			convey.Convey("Then the looser floor accepts the joint", func() {
				convey.So(rightOK, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When listing joints", func() {
			joints := p.Joints()

			convey.Convey("Then they come back in tracker order", func() {
				convey.So(len(joints), convey.ShouldEqual, 2)
				convey.So(joints[0].Name, convey.ShouldEqual, model.LeftShoulder)
				convey.So(joints[1].Name, convey.ShouldEqual, model.RightShoulder)
			})
		})
	})

	convey.Convey("Given a nil pose", t, func() {
		var p *model.Pose

		convey.Convey("Then lookups are safe and empty", func() {
			_, ok := p.Usable(model.Nose, 0)
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(p.Len(), convey.ShouldEqual, 0)
			convey.So(p.Joints(), convey.ShouldBeNil)
		})
	})
}

func TestParseJointName(t *testing.T) {
	convey.Convey("Given tracker joint names", t, func() {
		convey.Convey("When parsing snake_case and camelCase", func() {
			a, errA := model.ParseJointName("left_wrist")
			b, errB := model.ParseJointName("leftWrist")

			convey.Convey("Then both resolve to the same landmark", func() {
				convey.So(errA, convey.ShouldBeNil)
				convey.So(errB, convey.ShouldBeNil)
				convey.So(a, convey.ShouldEqual, model.LeftWrist)
				convey.So(b, convey.ShouldEqual, model.LeftWrist)
			})
		})

		convey.Convey("When parsing an unknown name", func() {
			_, err := model.ParseJointName("tail")

			convey.Convey("Then it reports ErrUnknownJoint", func() {
				convey.So(errors.Is(err, model.ErrUnknownJoint), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When decoding a joint from JSON", func() {
			var j model.Joint
			err := json.Unmarshal([]byte(`{"name":"rightAnkle","x":1.5,"y":2,"confidence":0.8}`), &j)

			convey.Convey("Then the name is normalized", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(j.Name, convey.ShouldEqual, model.RightAnkle)
				convey.So(j.X, convey.ShouldEqual, 1.5)
			})
		})
	})
}
