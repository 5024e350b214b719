package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/budget-buddy-backend/internal/circuitbreaker"
)

var (
	// ErrNotConfigured - no provider API key present
	ErrNotConfigured = errors.New("ai provider not configured")

	// ErrTimeout - provider did not answer within the request budget
	ErrTimeout = errors.New("ai provider timeout")

	// ErrUnavailable - provider returned an error or is unreachable
	ErrUnavailable = errors.New("ai provider unavailable")
)

// Client talks to an OpenAI-compatible chat completions API (Grok by
// default). One request, hard timeout, zero retries; a circuit breaker
// fails fast while the provider is down.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "grok-beta"
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuitbreaker.New(circuitbreaker.Config{
			MaxFailures:     5,
			Timeout:         30 * time.Second,
			HalfOpenSuccess: 1,
		}),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Sends one prompt and returns the completion text. An empty model uses the
// configured default.
func (c *Client) Complete(ctx context.Context, prompt, model string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	if model == "" {
		model = c.model
	}

	var text string
	err := c.breaker.Call(func() error {
		var callErr error
		text, callErr = c.complete(ctx, prompt, model)
		return callErr
	})

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return "", fmt.Errorf("%w: circuit open", ErrUnavailable)
	}

	return text, err
}

func (c *Client) complete(ctx context.Context, prompt, model string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Raw provider errors are logged, never returned to the caller
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("AI provider error: %d - %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: bad response body", ErrUnavailable)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return parsed.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Exposes breaker state for the admin status endpoint
func (c *Client) BreakerSnapshot() circuitbreaker.Metrics {
	return c.breaker.Snapshot()
}
