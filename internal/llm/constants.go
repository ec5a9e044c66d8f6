package llm

import "time"

const (
	// Sampling parameters sent with every completion request. Reviews
	// should be stable, so the temperature is kept low.
	requestTemperature  = 0.3
	requestMaxTokens    = 1500
	completionsEndpoint = "/chat/completions"

	// Retry schedule. Rate-limit responses back off exponentially starting
	// at rateLimitBaseDelay; transient server errors and timeouts wait a
	// short fixed delay instead.
	rateLimitBaseDelay    = 1 * time.Second
	serverErrorRetryDelay = 1 * time.Second
	transportRetryDelay   = 2 * time.Second
)
