package playtest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/session"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/types"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/synth"
	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/pkg/logger"
)

// playRemote runs every bot against the server at cfg.BaseURL. Each bot
// polls its session and posts the frame its current round calls for.
func playRemote(ctx context.Context, cfg *Config, stats *Stats, prefix string) ([]PlayerResult, []types.Entry, error) {
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		return nil, nil, fmt.Errorf("service health check failed: %w", err)
	}
	logger.Get().Info(ctx, "service is healthy", logger.String("baseURL", cfg.BaseURL))

	results := make([]PlayerResult, cfg.Players)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = playRemoteBot(ctx, client, cfg, newBot(prefix, i, cfg.Skill, cfg.Seed), stats)
		}(i)
	}
	wg.Wait()

	var board []types.Entry
	q := url.Values{"limit": {strconv.Itoa(cfg.TopN)}}
	if err := client.do(ctx, http.MethodGet, "/leaderboard?"+q.Encode(), nil, http.StatusOK, &board); err != nil {
		return results, nil, fmt.Errorf("leaderboard: %w", err)
	}
	return results, board, nil
}

func playRemoteBot(ctx context.Context, client *httpClient, cfg *Config, b *bot, stats *Stats) PlayerResult {
	res := PlayerResult{Name: b.name}

	var snap session.Snapshot
	start := types.StartSessionRequest{PlayerName: b.name, Challenges: cfg.Challenges}
	if err := client.do(ctx, http.MethodPost, "/sessions", start, http.StatusCreated, &snap); err != nil {
		res.Error = err.Error()
		return res
	}
	res.SessionID = snap.ID
	path := "/sessions/" + url.PathEscape(snap.ID)

	ctx, cancel := context.WithTimeout(ctx, sessionWait)
	defer cancel()

	ticker := time.NewTicker(cfg.FrameInterval)
	defer ticker.Stop()

	for snap.State == "active" || snap.State == "pending" {
		req := types.SampleRequest{}
		if p := synth.Pose(b.layout(snap.Round)); p != nil {
			req.Joints = p.Joints()
		}

		var ack types.SampleResponse
		if err := client.do(ctx, http.MethodPost, path+"/samples", req, http.StatusAccepted, &ack); err != nil {
			res.Error = err.Error()
			break
		}
		atomic.AddInt64(&stats.SamplesSent, 1)
		if !ack.Accepted {
			atomic.AddInt64(&stats.SamplesRefused, 1)
		}

		select {
		case <-ctx.Done():
			res.Error = ctx.Err().Error()
		case <-ticker.C:
		}
		if res.Error != "" {
			break
		}
		if err := client.do(ctx, http.MethodGet, path, nil, http.StatusOK, &snap); err != nil {
			res.Error = err.Error()
			break
		}
	}

	if res.Error != "" {
		// Leave no session running behind a failed bot.
		_ = client.do(context.WithoutCancel(ctx), http.MethodDelete, path, nil, http.StatusOK, &snap)
	}
	fillResult(&res, snap)
	return res
}
