package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/adapters/http/api"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/leaderboard"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/pose"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var errSessionNotFound = fmt.Errorf("session %w", types.ErrNotFound)

// mockDependencies implements api.Dependencies in memory.
type mockDependencies struct {
	sessions  map[string]session.Snapshot
	createErr error
	busy      bool
	samples   []model.Sample

	lastWindow leaderboard.Window
	lastLimit  int
	topN       []types.Entry
	topNErr    error
	rank       types.Entry
	rankErr    error
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		sessions: map[string]session.Snapshot{
			"s1": {ID: "s1", PlayerName: "Ana", State: "active", RoundCount: 3},
		},
		topN: []types.Entry{
			{Rank: 1, Name: "Ana", Score: 25, Accuracy: 85, Attempts: 2},
			{Rank: 2, Name: "Bo", Score: 9, Accuracy: 95, Attempts: 1},
		},
	}
}

func (m *mockDependencies) CreateSession(_ context.Context, req types.StartSessionRequest) (session.Snapshot, error) {
	if m.createErr != nil {
		return session.Snapshot{}, m.createErr
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		return session.Snapshot{}, session.ErrInvalidPlayerName
	}
	for _, id := range req.Challenges {
		if id == "moonwalk" {
			return session.Snapshot{}, fmt.Errorf("%w: %q", pose.ErrUnknownChallenge, id)
		}
	}
	snap := session.Snapshot{ID: "s2", PlayerName: req.PlayerName, State: "active", RoundCount: len(req.Challenges)}
	m.sessions[snap.ID] = snap
	return snap, nil
}

func (m *mockDependencies) Session(id string) (session.Snapshot, error) {
	snap, ok := m.sessions[id]
	if !ok {
		return session.Snapshot{}, errSessionNotFound
	}
	return snap, nil
}

func (m *mockDependencies) EndSession(_ context.Context, id string) (session.Snapshot, error) {
	snap, ok := m.sessions[id]
	if !ok {
		return session.Snapshot{}, errSessionNotFound
	}
	snap.State = "abandoned"
	m.sessions[id] = snap
	return snap, nil
}

func (m *mockDependencies) SubmitSample(_ context.Context, id string, s model.Sample) (bool, error) {
	if _, ok := m.sessions[id]; !ok {
		return false, errSessionNotFound
	}
	if m.busy {
		return false, nil
	}
	m.samples = append(m.samples, s)
	return true, nil
}

func (m *mockDependencies) Challenges() []types.Challenge {
	return []types.Challenge{{ID: pose.TPose, Name: "T-Pose", Description: "Arms straight out"}}
}

func (m *mockDependencies) TopN(_ context.Context, window leaderboard.Window, n int) ([]types.Entry, error) {
	m.lastWindow, m.lastLimit = window, n
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.topN) {
		return m.topN, nil
	}
	return m.topN[:n], nil
}

func (m *mockDependencies) Rank(_ context.Context, name string, window leaderboard.Window) (types.Entry, error) {
	m.lastWindow = window
	if m.rankErr != nil {
		return types.Entry{}, m.rankErr
	}
	return m.rank, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 100)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(newMockDependencies())

		Convey("Then the health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint returns JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then the challenges endpoint lists challenges", func() {
			w := do(mux, http.MethodGet, "/challenges", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got []types.Challenge
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, pose.TPose)
		})

		Convey("Then wrong methods are rejected", func() {
			So(do(mux, http.MethodPost, "/challenges", "{}").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodGet, "/sessions", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPut, "/sessions/s1", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given an API server with one active session", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When creating a session", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"player_name":"Cy","challenges":["t_pose","squat"]}`)

			Convey("Then it returns the new snapshot", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var snap session.Snapshot
				So(json.Unmarshal(w.Body.Bytes(), &snap), ShouldBeNil)
				So(snap.ID, ShouldEqual, "s2")
				So(snap.RoundCount, ShouldEqual, 2)
			})
		})

		Convey("When the player name is blank", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"player_name":"   "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_player_name")
		})

		Convey("When a challenge is unknown", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"player_name":"Cy","challenges":["moonwalk"]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "unknown_challenge")
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/sessions", `{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("When the service is at capacity", func() {
			deps.createErr = fmt.Errorf("too many active sessions: %w", types.ErrCapacity)
			w := do(mux, http.MethodPost, "/sessions", `{"player_name":"Cy"}`)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When reading the session", func() {
			w := do(mux, http.MethodGet, "/sessions/s1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"player_name":"Ana"`)
		})

		Convey("When reading an unknown session", func() {
			w := do(mux, http.MethodGet, "/sessions/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("When ending the session", func() {
			w := do(mux, http.MethodDelete, "/sessions/s1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"state":"abandoned"`)
		})

		Convey("When posting a sample", func() {
			w := do(mux, http.MethodPost, "/sessions/s1/samples",
				`{"joints":[{"name":"nose","x":1,"y":2,"confidence":0.9}],"image":"/9gB"}`)

			Convey("Then it is accepted and converted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"accepted":true`)
				So(len(deps.samples), ShouldEqual, 1)
				So(deps.samples[0].Pose.Len(), ShouldEqual, 1)
				So(deps.samples[0].Image, ShouldResemble, []byte{0xff, 0xd8, 0x01})
			})
		})

		Convey("When a sample arrives while the previous one is in flight", func() {
			deps.busy = true
			w := do(mux, http.MethodPost, "/sessions/s1/samples", `{"joints":[]}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Body.String(), ShouldContainSubstring, `"accepted":false`)
		})

		Convey("When a sample names an unknown joint", func() {
			w := do(mux, http.MethodPost, "/sessions/s1/samples", `{"joints":[{"name":"tail"}]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a sample targets an unknown session", func() {
			w := do(mux, http.MethodPost, "/sessions/nope/samples", `{"joints":[]}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the sub-resource is unknown", func() {
			w := do(mux, http.MethodGet, "/sessions/s1/frames", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given an API server with standings", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When no limit or window is given", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "")

			Convey("Then it uses the defaults", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 10)
				So(deps.lastWindow, ShouldEqual, leaderboard.WindowAll)
				var got []types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(len(got), ShouldEqual, 2)
				So(got[0].Name, ShouldEqual, "Ana")
			})
		})

		Convey("When a window and limit are given", func() {
			w := do(mux, http.MethodGet, "/leaderboard?limit=1&window=week", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 1)
			So(deps.lastWindow, ShouldEqual, leaderboard.WindowWeek)
		})

		Convey("When the limit is invalid", func() {
			So(do(mux, http.MethodGet, "/leaderboard?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/leaderboard?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			w := do(mux, http.MethodGet, "/leaderboard?limit=101", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "limit_exceeded")
		})

		Convey("When the window is unknown", func() {
			So(do(mux, http.MethodGet, "/leaderboard?window=year", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails", func() {
			deps.topNErr = errors.New("disk on fire")
			So(do(mux, http.MethodGet, "/leaderboard", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestRankHandler(t *testing.T) {
	Convey("Given an API server with standings", t, func() {
		deps := newMockDependencies()
		deps.rank = types.Entry{Rank: 1, Name: "Ana", Score: 25, Timestamp: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}
		mux := newMux(deps)

		Convey("When ranking a known player", func() {
			w := do(mux, http.MethodGet, "/rank/ana?window=today", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"rank":1`)
			So(deps.lastWindow, ShouldEqual, leaderboard.WindowToday)
		})

		Convey("When the player is not ranked", func() {
			deps.rankErr = fmt.Errorf("player %w", types.ErrNotFound)
			So(do(mux, http.MethodGet, "/rank/zed", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the name is missing", func() {
			So(do(mux, http.MethodGet, "/rank/", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the store fails", func() {
			deps.rankErr = errors.New("disk on fire")
			So(do(mux, http.MethodGet, "/rank/ana", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause are visible to errors.Is", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then Wrap of nil is nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
