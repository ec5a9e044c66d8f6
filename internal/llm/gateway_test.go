package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-critic/internal/core"
)

func testClient(baseURL string, maxAttempts int) *Client {
	return &Client{
		baseURL:          baseURL,
		apiKey:           "test-key",
		model:            "test-model",
		maxAttempts:      maxAttempts,
		timeout:          5 * time.Second,
		httpClient:       &http.Client{},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		rateLimitBase:    time.Millisecond,
		serverErrorDelay: time.Millisecond,
		transportDelay:   time.Millisecond,
	}
}

func chatReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func TestClientInvoke_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(chatReply("looks good")))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	content, err := c.Invoke(context.Background(), "review this")

	require.NoError(t, err)
	assert.Equal(t, "looks good", content)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "review this", gotBody.Messages[0].Content)
}

func TestClientInvoke_RateLimitExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	_, err := c.Invoke(context.Background(), "prompt")

	require.Error(t, err)
	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 3, gwErr.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientInvoke_ServerErrorThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(chatReply("recovered")))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	content, err := c.Invoke(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "recovered", content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientInvoke_AuthFailureDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	_, err := c.Invoke(context.Background(), "prompt")

	require.Error(t, err)
	var gwErr *core.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 1, gwErr.Attempts)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, gwErr.LastErr.Error(), "status 401")
}

func TestClientInvoke_EmptyChoicesDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	_, err := c.Invoke(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientInvoke_ContextCancelAbortsRetryWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5)
	c.rateLimitBase = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Invoke(ctx, "prompt")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		var gwErr *core.GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.True(t, errors.Is(gwErr.LastErr, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Invoke did not abort after context cancellation")
	}
}

func TestRetryDelay(t *testing.T) {
	c := testClient("http://unused", 3)
	c.rateLimitBase = time.Second
	c.serverErrorDelay = 2 * time.Second
	c.transportDelay = 3 * time.Second

	assert.Equal(t, time.Second, c.retryDelay(&errRateLimited{}, 1))
	assert.Equal(t, 2*time.Second, c.retryDelay(&errRateLimited{}, 2))
	assert.Equal(t, 4*time.Second, c.retryDelay(&errRateLimited{}, 3))
	assert.Equal(t, 2*time.Second, c.retryDelay(&errServer{statusCode: 503}, 1))
	assert.Equal(t, 3*time.Second, c.retryDelay(errors.New("dial tcp: refused"), 1))
}
