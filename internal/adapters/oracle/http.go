package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/CH-JASWANTH-KUMAR/ML-ARENA/internal/domain/geometry"
)

// HTTP client defaults.
const (
	defaultAttemptTimeout = 3 * time.Second
	defaultRetries        = 2
	defaultBackoff        = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	maxResponseBytes      = 1 << 16
)

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPDoer replaces the underlying *http.Client.
func WithHTTPDoer(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.http = c
		}
	}
}

// WithAttemptTimeout bounds each attempt.
func WithAttemptTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		if d > 0 {
			h.attemptTimeout = d
		}
	}
}

// WithRetries sets how many times a failed attempt is retried.
func WithRetries(n int) HTTPOption {
	return func(h *HTTPClient) {
		if n >= 0 {
			h.retries = uint64(n)
		}
	}
}

// WithBackoff sets the first retry delay and its cap.
func WithBackoff(base, ceiling time.Duration) HTTPOption {
	return func(h *HTTPClient) {
		if base > 0 && ceiling >= base {
			h.backoff = base
			h.maxBackoff = ceiling
		}
	}
}

// HTTPClient posts attempts to a remote judge:
//
//	POST {url}  {"image": "<base64>", "challenge_name": "...", "challenge_description": "..."}
//	200         {"accuracy": 87}
type HTTPClient struct {
	url            string
	http           *http.Client
	attemptTimeout time.Duration
	retries        uint64
	backoff        time.Duration
	maxBackoff     time.Duration
}

// NewHTTPClient creates a client for the judge at url.
func NewHTTPClient(url string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		url:            url,
		http:           &http.Client{},
		attemptTimeout: defaultAttemptTimeout,
		retries:        defaultRetries,
		backoff:        defaultBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type judgeRequest struct {
	Image                []byte `json:"image"`
	ChallengeName        string `json:"challenge_name"`
	ChallengeDescription string `json:"challenge_description"`
}

type judgeResponse struct {
	Accuracy *int `json:"accuracy"`
}

// Judge posts req and returns the clamped accuracy. Transport errors, 5xx
// and 429 responses are retried with exponential backoff; anything else
// fails at once. Every failure wraps ErrUnavailable.
func (h *HTTPClient) Judge(ctx context.Context, req Request) (int, error) {
	body, err := json.Marshal(judgeRequest{
		Image:                req.Image,
		ChallengeName:        req.ChallengeName,
		ChallengeDescription: req.ChallengeDescription,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	b := retry.NewExponential(h.backoff)
	b = retry.WithCappedDuration(h.maxBackoff, b)
	b = retry.WithMaxRetries(h.retries, b)

	var accuracy int
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		acc, err := h.attempt(ctx, body)
		if err != nil {
			return err
		}
		accuracy = acc
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return accuracy, nil
}

func (h *HTTPClient) attempt(ctx context.Context, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, h.attemptTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(httpReq)
	if err != nil {
		return 0, retry.RetryableError(fmt.Errorf("post: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, retry.RetryableError(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return 0, retry.RetryableError(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out judgeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Accuracy == nil {
		return 0, fmt.Errorf("response has no accuracy")
	}
	return geometry.ClampAccuracy(*out.Accuracy), nil
}
