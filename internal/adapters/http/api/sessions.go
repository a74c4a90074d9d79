package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/model"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
)

// maxSampleBytes bounds a posted frame, including an optional image.
const maxSampleBytes = 4 << 20

// SessionDependencies drives game sessions.
type SessionDependencies interface {
	CreateSession(ctx context.Context, req types.StartSessionRequest) (session.Snapshot, error)
	Session(id string) (session.Snapshot, error)
	EndSession(ctx context.Context, id string) (session.Snapshot, error)
	SubmitSample(ctx context.Context, id string, s model.Sample) (bool, error)
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, op, http.MethodPost)
		return
	}
	var req types.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	snap, err := h.deps.CreateSession(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleSession routes GET|DELETE /sessions/{id} and
// POST /sessions/{id}/samples.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, id)
		case http.MethodDelete:
			h.end(w, r, id)
		default:
			methodNotAllowed(w, op, http.MethodGet, http.MethodDelete)
		}
	case "samples":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, op, http.MethodPost)
			return
		}
		h.sample(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) get(w http.ResponseWriter, id string) {
	snap, err := h.deps.Session(id)
	if err != nil {
		writeUpstreamError(w, "api.get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionsHandler) end(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := h.deps.EndSession(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, "api.end_session", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionsHandler) sample(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.post_sample"
	var req types.SampleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSampleBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	accepted, err := h.deps.SubmitSample(r.Context(), id, req.Sample())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	// A sample dropped because the previous one is still in flight is not
	// an error; the client simply sends the next frame.
	writeJSON(w, http.StatusAccepted, types.SampleResponse{Accepted: accepted})
}
