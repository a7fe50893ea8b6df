// Package api wraps the Drive service with retry and error classification.
package api

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/drivestow/drivestow/internal/logging"
	"github.com/drivestow/drivestow/internal/utils"
)

// Client wraps the Drive API with retry logic.
type Client struct {
	service    *drive.Service
	maxRetries int
	retryDelay time.Duration
	logger     logging.Logger
}

// NewClient creates a new Drive API client.
func NewClient(service *drive.Service, maxRetries int, retryDelayMs int, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Client{
		service:    service,
		maxRetries: maxRetries,
		retryDelay: time.Duration(retryDelayMs) * time.Millisecond,
		logger:     logger,
	}
}

// RequestContext carries per-operation tracing metadata.
type RequestContext struct {
	Operation string
	Profile   string
	TraceID   string
}

// NewRequestContext creates a request context with a fresh trace ID.
func NewRequestContext(profile string, operation string) *RequestContext {
	return &RequestContext{
		Operation: operation,
		Profile:   profile,
		TraceID:   uuid.New().String(),
	}
}

// ExecuteWithRetry executes an API call, retrying transient failures with
// exponential backoff. The call function is invoked at most maxRetries+1
// times; context cancellation interrupts any pending backoff.
func ExecuteWithRetry[T any](ctx context.Context, client *Client, reqCtx *RequestContext, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	logger := client.logger.WithTraceID(reqCtx.TraceID)
	logger.Debug("API operation starting",
		logging.F("operation", reqCtx.Operation),
		logging.F("profile", reqCtx.Profile),
	)

	start := time.Now()

	for attempt := 0; attempt <= client.maxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			logger.Debug("API operation completed",
				logging.F("operation", reqCtx.Operation),
				logging.F("duration_ms", time.Since(start).Milliseconds()),
				logging.F("attempts", attempt+1),
			)
			return result, nil
		}

		if !isRetryable(lastErr) {
			logger.Error("API operation failed",
				logging.F("operation", reqCtx.Operation),
				logging.F("error", lastErr.Error()),
				logging.F("attempts", attempt+1),
			)
			return result, classifyError(lastErr)
		}

		if attempt < client.maxRetries {
			delay := calculateBackoff(client.retryDelay, attempt, lastErr)
			logger.Warn("API operation failed, retrying",
				logging.F("operation", reqCtx.Operation),
				logging.F("attempt", attempt+1),
				logging.F("delay_ms", delay.Milliseconds()),
				logging.F("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	logger.Error("API operation failed after max retries",
		logging.F("operation", reqCtx.Operation),
		logging.F("attempts", client.maxRetries+1),
		logging.F("error", lastErr.Error()),
	)

	return result, classifyError(lastErr)
}

// isRetryable reports whether an error is worth retrying.
func isRetryable(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

// calculateBackoff derives the next retry delay. A Retry-After header from
// the server wins over exponential backoff.
func calculateBackoff(baseDelay time.Duration, attempt int, err error) time.Duration {
	maxDelay := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond

	if apiErr, ok := err.(*googleapi.Error); ok {
		if retryAfter := apiErr.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				delay := time.Duration(seconds) * time.Second
				if delay > maxDelay {
					return maxDelay
				}
				return delay
			}
		}
	}

	delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if delay > maxDelay {
		delay = maxDelay
	}

	// Jitter of up to 25% either way keeps concurrent clients from
	// retrying in lockstep.
	jitterRange := delay / 4
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(int64(jitterRange*2))) - jitterRange
	}
	if delay < 0 {
		delay = baseDelay
	}

	return delay
}

// classifyError converts a Drive API error into a CLIError with the
// matching error code.
func classifyError(err error) error {
	apiErr, ok := err.(*googleapi.Error)
	if !ok {
		return utils.NewCLIError(utils.ErrCodeNetworkError, err.Error())
	}

	var code string
	switch apiErr.Code {
	case 401:
		code = utils.ErrCodeAuthRequired
	case 403:
		code = utils.ErrCodePermissionDenied
	case 404:
		code = utils.ErrCodeFileNotFound
	case 429:
		code = utils.ErrCodeRateLimited
	default:
		if apiErr.Code >= 500 {
			code = utils.ErrCodeStoreError
		} else {
			code = utils.ErrCodeUnknown
		}
	}

	return utils.NewCLIError(code, apiErr.Message).WithHTTPStatus(apiErr.Code)
}

// Service returns the underlying Drive service.
func (c *Client) Service() *drive.Service {
	return c.service
}

// MaxRetries returns the configured retry count.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}
