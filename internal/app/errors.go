package service

import (
	"errors"
	"fmt"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
)

// Service errors.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrSessionNotFound  = fmt.Errorf("session %w", types.ErrNotFound)
	ErrPlayerNotRanked  = fmt.Errorf("player %w", types.ErrNotFound)
	ErrTooManySessions  = fmt.Errorf("too many active sessions: %w", types.ErrCapacity)
	ErrJudgeUnavailable = errors.New("no judge configured")
)
