package types_test

import (
	"encoding/json"
	"testing"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSampleRequest(t *testing.T) {
	Convey("Given a posted frame with two joints", t, func() {
		var req types.SampleRequest
		err := json.Unmarshal([]byte(`{"joints":[
			{"name":"nose","x":10,"y":20,"confidence":0.9},
			{"name":"leftWrist","x":1,"y":2,"confidence":0.5}
		],"plausible":true}`), &req)
		So(err, ShouldBeNil)

		Convey("When converting it to a sample", func() {
			s := req.Sample()

			Convey("Then the pose carries both joints", func() {
				So(s.Pose.Len(), ShouldEqual, 2)
				j, ok := s.Pose.Joint(model.LeftWrist)
				So(ok, ShouldBeTrue)
				So(j.Confidence, ShouldEqual, 0.5)
				So(*s.Plausible, ShouldBeTrue)
			})
		})
	})

	Convey("Given a frame without joints", t, func() {
		s := types.SampleRequest{}.Sample()

		Convey("Then no body was detected", func() {
			So(s.Pose, ShouldBeNil)
			So(s.Plausible, ShouldBeNil)
		})
	})

	Convey("Given a frame naming an unknown joint", t, func() {
		var req types.SampleRequest
		err := json.Unmarshal([]byte(`{"joints":[{"name":"tail","x":1,"y":1,"confidence":1}]}`), &req)

		Convey("Then decoding fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
