package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestLogger_Init(t *testing.T) {
	convey.Convey("Given a logger writing text to a buffer", t, func() {
		var buf bytes.Buffer
		convey.So(Init(WithWriter(&buf)), convey.ShouldBeNil)
		defer func() { _ = Init() }()

		ctx := context.Background()

		convey.Convey("When an info line is logged with fields", func() {
			Get().Info(ctx, "round passed", String("session", "s-1"), Int("points", 9), Bool("judged", true))

			convey.Convey("Then the fields and caller are written", func() {
				out := buf.String()
				convey.So(out, convey.ShouldContainSubstring, `msg="round passed"`)
				convey.So(out, convey.ShouldContainSubstring, "session=s-1")
				convey.So(out, convey.ShouldContainSubstring, "points=9")
				convey.So(out, convey.ShouldContainSubstring, "judged=true")
				convey.So(out, convey.ShouldContainSubstring, "source=logger_test.go:")
			})
		})

		convey.Convey("When a debug line is logged at the default level", func() {
			Get().Debug(ctx, "hidden")

			convey.Convey("Then nothing is written", func() {
				convey.So(buf.Len(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the level is lowered to debug", func() {
			convey.So(SetLevelString(" DEBUG "), convey.ShouldBeNil)
			Get().Debug(ctx, "visible", Duration("took", 1500*time.Millisecond))

			convey.Convey("Then debug lines appear", func() {
				convey.So(buf.String(), convey.ShouldContainSubstring, "took=1.5s")
			})
		})

		convey.Convey("When the level is raised to error", func() {
			convey.So(SetLevelString("error"), convey.ShouldBeNil)
			Get().Warn(ctx, "dropped")
			Get().Error(ctx, "kept", Error(errors.New("boom")))

			convey.Convey("Then only the error is written", func() {
				out := buf.String()
				convey.So(out, convey.ShouldNotContainSubstring, "dropped")
				convey.So(out, convey.ShouldContainSubstring, "error=boom")
			})
		})

		convey.Convey("When an unknown level is set", func() {
			err := SetLevelString("chatty")

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestLogger_NamedJSON(t *testing.T) {
	convey.Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		convey.So(Init(WithWriter(&buf), WithJSON()), convey.ShouldBeNil)
		defer func() { _ = Init() }()

		convey.Convey("When a named logger writes a line", func() {
			Named("board").Warn(context.Background(), "store retry", Float64("ratio", 0.5), Any("keys", []string{"a"}))

			convey.Convey("Then fields are grouped under the name", func() {
				var line map[string]any
				convey.So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line), convey.ShouldBeNil)
				convey.So(line["msg"], convey.ShouldEqual, "store retry")
				convey.So(line["level"], convey.ShouldEqual, "WARN")
				group, ok := line["board"].(map[string]any)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(group["ratio"], convey.ShouldEqual, 0.5)
				convey.So(group["source"], convey.ShouldStartWith, "logger_test.go:")
			})
		})
	})

	convey.Convey("Given the logger is synced", t, func() {
		convey.So(Init(), convey.ShouldBeNil)
		convey.So(Sync(), convey.ShouldBeNil)
	})
}
