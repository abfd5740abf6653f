package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"perchfinder/stats"
)

var (
	ErrUnauthenticated = errors.New("advice request not authenticated")
	ErrRateLimited     = errors.New("advice request rate limited")
	ErrRequestFailed   = errors.New("advice request failed")
)

// Client calls the advice backend on behalf of the in-process requester.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates an advice client. Zero timeout defaults to 60 seconds;
// the backend call includes an LLM round trip.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type adviceRequest struct {
	Stats *stats.WaterStatsPayload `json:"stats"`
}

type adviceResponse struct {
	Recommendation string `json:"recommendation"`
	Error          string `json:"error"`
}

// Fetch posts the stats payload and returns the generated recommendation.
// 401 maps to ErrUnauthenticated and 429 to ErrRateLimited so the caller can
// translate them into user-facing messages.
func (c *Client) Fetch(ctx context.Context, idToken, appCheckToken string, payload *stats.WaterStatsPayload) (string, error) {
	body, err := json.Marshal(adviceRequest{Stats: payload})
	if err != nil {
		return "", fmt.Errorf("failed to marshal advice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build advice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+idToken)
	if appCheckToken != "" {
		req.Header.Set("X-App-Check", appCheckToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrUnauthenticated
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(raw))
	}

	var parsed adviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: bad response body: %v", ErrRequestFailed, err)
	}
	if parsed.Recommendation == "" {
		return "", fmt.Errorf("%w: empty recommendation", ErrRequestFailed)
	}
	return parsed.Recommendation, nil
}
