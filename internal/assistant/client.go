// Package assistant talks to the external natural-language assistant that
// manipulates tasks on the user's behalf.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"todo_webapp/internal/domain"

	"github.com/sony/gobreaker"
)

const maxResponseBytes = 1 << 20

// Message is one conversation turn.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Action is one activity entry as the assistant expects it.
type Action struct {
	Type      string `json:"type"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

type Request struct {
	Prompt        string    `json:"prompt"`
	UserID        string    `json:"userId"`
	History       []Message `json:"history"`
	ActionHistory []Action  `json:"actionHistory"`
}

type Response struct {
	Reply string `json:"reply"`
}

// rejectedError marks a 4xx answer. It is returned to the caller but does
// not count against the breaker.
type rejectedError struct {
	status int
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("assistant rejected request: status %d", e.status)
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
}

// New returns a client for the assistant at baseURL, or nil when baseURL
// is empty.
func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "assistant",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				var rej *rejectedError
				return err == nil || errors.As(err, &rej)
			},
			OnStateChange: func(_ string, _ gobreaker.State, to gobreaker.State) {
				breakerState.Set(float64(to))
			},
		}),
	}
}

// Ask sends req and returns the raw reply text. Every failure wraps
// domain.ErrAssistantUnavailable.
func (c *Client) Ask(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.do(ctx, req)
	})
	requestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(resultLabel(err)).Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrAssistantUnavailable, err)
	}
	requestsTotal.WithLabelValues("ok").Inc()
	return out.(string), nil
}

func (c *Client) do(ctx context.Context, req Request) (string, error) {
	if req.History == nil {
		req.History = []Message{}
	}
	if req.ActionHistory == nil {
		req.ActionHistory = []Action{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", &rejectedError{status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	var r Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&r); err != nil {
		return "", fmt.Errorf("decode assistant reply: %w", err)
	}
	return r.Reply, nil
}

func resultLabel(err error) string {
	var rej *rejectedError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "open"
	case errors.As(err, &rej):
		return "rejected"
	default:
		return "error"
	}
}
