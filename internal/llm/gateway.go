package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/code-critic/internal/config"
	"github.com/sevigo/code-critic/internal/core"
)

// Client talks to an OpenAI-compatible chat completions endpoint. It owns
// the retry and timeout policy: rate limiting backs off exponentially,
// transient server errors and timeouts wait a short fixed delay, and both
// share a capped attempt budget. Unbounded retry is not allowed.
//
// A Client is safe for concurrent use; the underlying http.Client pools
// connections across goroutines.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger

	// Delay schedule, overridable in tests.
	rateLimitBase    time.Duration
	serverErrorDelay time.Duration
	transportDelay   time.Duration
}

// NewClient creates a gateway client from the process configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:          strings.TrimRight(cfg.LLMBaseURL, "/"),
		apiKey:           cfg.LLMAPIKey,
		model:            cfg.LLMModel,
		maxAttempts:      cfg.LLMMaxAttempts,
		timeout:          cfg.LLMRequestTimeout,
		httpClient:       &http.Client{},
		logger:           logger,
		rateLimitBase:    rateLimitBaseDelay,
		serverErrorDelay: serverErrorRetryDelay,
		transportDelay:   transportRetryDelay,
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

// errNonRetriable wraps failures that exhaust no further attempts, such as
// rejected credentials or a malformed request.
type errNonRetriable struct {
	err error
}

func (e *errNonRetriable) Error() string { return e.err.Error() }
func (e *errNonRetriable) Unwrap() error { return e.err }

// Invoke sends the prompt to the model endpoint and returns the assistant
// message content. Each attempt is bounded by the configured per-request
// timeout; retry waits abort as soon as ctx is cancelled. On terminal
// failure it returns a *core.GatewayError carrying the last cause.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: requestTemperature,
		MaxTokens:   requestMaxTokens,
	})
	if err != nil {
		return "", &core.GatewayError{Attempts: 0, LastErr: fmt.Errorf("marshaling request: %w", err)}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		content, err := c.attempt(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var fatal *errNonRetriable
		if errors.As(err, &fatal) {
			c.logger.Error("model invocation failed", "attempt", attempt, "error", fatal.err)
			return "", &core.GatewayError{Attempts: attempt, LastErr: fatal.err}
		}

		if attempt == c.maxAttempts {
			break
		}

		delay := c.retryDelay(err, attempt)
		c.logger.Warn("model invocation attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"delay", delay,
			"error", err,
		)
		if waitErr := sleepCtx(ctx, delay); waitErr != nil {
			return "", &core.GatewayError{Attempts: attempt, LastErr: waitErr}
		}
	}

	return "", &core.GatewayError{Attempts: c.maxAttempts, LastErr: lastErr}
}

// attempt performs a single bounded request against the endpoint.
func (c *Client) attempt(ctx context.Context, payload []byte) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+completionsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &errNonRetriable{err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("request timed out after %s: %w", c.timeout, err)
		}
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &errRateLimited{}
	case resp.StatusCode >= 500:
		return "", &errServer{statusCode: resp.StatusCode, body: truncate(string(body), 200)}
	case resp.StatusCode != http.StatusOK:
		return "", &errNonRetriable{err: fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))}
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &errNonRetriable{err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &errNonRetriable{err: fmt.Errorf("no choices in response")}
	}
	content := result.Choices[0].Message.Content
	if content == "" {
		return "", &errNonRetriable{err: fmt.Errorf("empty message content in response")}
	}
	return content, nil
}

type errRateLimited struct{}

func (e *errRateLimited) Error() string { return "rate limited" }

type errServer struct {
	statusCode int
	body       string
}

func (e *errServer) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// retryDelay selects the wait before the next attempt: exponential for
// rate limiting (1s, 2s, 4s, ...), fixed for server errors, and a slightly
// longer fixed delay for timeouts and network failures.
func (c *Client) retryDelay(err error, attempt int) time.Duration {
	var rl *errRateLimited
	if errors.As(err, &rl) {
		return c.rateLimitBase << (attempt - 1)
	}
	var srv *errServer
	if errors.As(err, &srv) {
		return c.serverErrorDelay
	}
	return c.transportDelay
}

// sleepCtx waits for d or until ctx is cancelled, so a caller-level
// timeout or shutdown aborts a pending retry instead of leaking it.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
