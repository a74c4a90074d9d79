package oracle_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/oracle"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func fastClient(url string, opts ...oracle.HTTPOption) *oracle.HTTPClient {
	base := []oracle.HTTPOption{
		oracle.WithBackoff(time.Millisecond, 5*time.Millisecond),
		oracle.WithAttemptTimeout(500 * time.Millisecond),
	}
	return oracle.NewHTTPClient(url, append(base, opts...)...)
}

func TestHTTPClient(t *testing.T) {
	ctx := context.Background()
	req := oracle.Request{Image: []byte{0xff, 0xd8, 0x01}, ChallengeName: "T-Pose", ChallengeDescription: "arms out"}

	Convey("Given a judge that answers", t, func() {
		var got map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"accuracy":87}`))
		}))
		defer srv.Close()

		acc, err := fastClient(srv.URL).Judge(ctx, req)

		Convey("Then the accuracy is returned and the request is well formed", func() {
			So(err, ShouldBeNil)
			So(acc, ShouldEqual, 87)
			So(got["image"], ShouldEqual, "/9gB")
			So(got["challenge_name"], ShouldEqual, "T-Pose")
			So(got["challenge_description"], ShouldEqual, "arms out")
		})
	})

	Convey("Given a judge that fails twice then recovers", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"accuracy":64}`))
		}))
		defer srv.Close()

		acc, err := fastClient(srv.URL, oracle.WithRetries(2)).Judge(ctx, req)

		Convey("Then the retries succeed", func() {
			So(err, ShouldBeNil)
			So(acc, ShouldEqual, 64)
			So(int(calls.Load()), ShouldEqual, 3)
		})
	})

	Convey("Given a judge that rejects the request", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := fastClient(srv.URL, oracle.WithRetries(3)).Judge(ctx, req)

		Convey("Then it fails without retrying", func() {
			So(errors.Is(err, oracle.ErrUnavailable), ShouldBeTrue)
			So(int(calls.Load()), ShouldEqual, 1)
		})
	})

	Convey("Given a judge that hangs", t, func() {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		start := time.Now()
		_, err := fastClient(srv.URL, oracle.WithRetries(0), oracle.WithAttemptTimeout(50*time.Millisecond)).Judge(ctx, req)

		Convey("Then the wait is bounded", func() {
			So(errors.Is(err, oracle.ErrUnavailable), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
		})
	})

	Convey("Given a judge that overshoots the range", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"accuracy":150}`))
		}))
		defer srv.Close()

		acc, err := fastClient(srv.URL).Judge(ctx, req)
		So(err, ShouldBeNil)
		So(acc, ShouldEqual, 100)
	})

	Convey("Given a judge that omits the accuracy", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"score":12}`))
		}))
		defer srv.Close()

		_, err := fastClient(srv.URL).Judge(ctx, req)
		So(errors.Is(err, oracle.ErrUnavailable), ShouldBeTrue)
	})
}

func TestSimulated(t *testing.T) {
	reg := pose.DefaultRegistry()
	fast := oracle.WithLatencyRange(0, time.Millisecond)

	Convey("Given a simulated judge", t, func() {
		j := oracle.NewSimulated(reg, fast, oracle.WithSeed(1))

		Convey("When rating a clean T-pose", func() {
			acc, err := j.Judge(context.Background(), oracle.Request{ChallengeID: pose.TPose, Pose: synth.Pose(synth.TPose)})

			Convey("Then it agrees with the geometric validator", func() {
				So(err, ShouldBeNil)
				So(acc, ShouldEqual, 100)
			})
		})

		Convey("When rating an unknown challenge", func() {
			_, err := j.Judge(context.Background(), oracle.Request{ChallengeID: "moonwalk"})
			So(errors.Is(err, oracle.ErrUnknownChallenge), ShouldBeTrue)
		})

		Convey("When the caller gives up first", func() {
			slow := oracle.NewSimulated(reg, oracle.WithLatencyRange(time.Second, 2*time.Second))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			_, err := slow.Judge(ctx, oracle.Request{ChallengeID: pose.TPose})
			So(errors.Is(err, oracle.ErrUnavailable), ShouldBeTrue)
		})
	})
}
