package api

import (
	"net/http"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
)

// ChallengeDependencies lists playable challenges.
type ChallengeDependencies interface {
	Challenges() []types.Challenge
}

// ChallengesHandler handles challenge listing requests.
type ChallengesHandler struct {
	deps ChallengeDependencies
}

// NewChallengesHandler creates a new challenges handler.
func NewChallengesHandler(deps ChallengeDependencies) *ChallengesHandler {
	return &ChallengesHandler{deps: deps}
}

// HandleList handles GET /challenges requests.
func (h *ChallengesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.list_challenges", http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Challenges())
}
