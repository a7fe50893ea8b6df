package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/drivestow/drivestow/internal/utils"
)

func TestExecuteWithRetrySucceedsFirstAttempt(t *testing.T) {
	client := NewClient(nil, 3, 1, nil)
	reqCtx := NewRequestContext("default", "files.get")

	calls := 0
	result, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %q", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestExecuteWithRetryRetriesTransientErrors(t *testing.T) {
	client := NewClient(nil, 3, 1, nil)
	reqCtx := NewRequestContext("default", "files.create")

	calls := 0
	result, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &googleapi.Error{Code: 503, Message: "backend error"}
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "recovered" {
		t.Errorf("expected recovered, got %q", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestExecuteWithRetryDoesNotRetryNonRetryable(t *testing.T) {
	client := NewClient(nil, 3, 1, nil)
	reqCtx := NewRequestContext("default", "files.get")

	calls := 0
	_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		return "", &googleapi.Error{Code: 404, Message: "not found"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	var cliErr *utils.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T", err)
	}
	if cliErr.Code != utils.ErrCodeFileNotFound {
		t.Errorf("expected %s, got %s", utils.ErrCodeFileNotFound, cliErr.Code)
	}
	if cliErr.HTTPStatus != 404 {
		t.Errorf("expected HTTP status 404, got %d", cliErr.HTTPStatus)
	}
}

func TestExecuteWithRetryExhaustsRetries(t *testing.T) {
	client := NewClient(nil, 2, 1, nil)
	reqCtx := NewRequestContext("default", "files.create")

	calls := 0
	_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
		calls++
		return "", &googleapi.Error{Code: 429, Message: "rate limited"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}

	var cliErr *utils.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected CLIError, got %T", err)
	}
	if cliErr.Code != utils.ErrCodeRateLimited {
		t.Errorf("expected %s, got %s", utils.ErrCodeRateLimited, cliErr.Code)
	}
}

func TestExecuteWithRetryHonorsContextCancellation(t *testing.T) {
	client := NewClient(nil, 5, 60000, nil)
	reqCtx := NewRequestContext("default", "files.create")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := ExecuteWithRetry(ctx, client, reqCtx, func() (string, error) {
		return "", &googleapi.Error{Code: 503, Message: "backend error"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateBackoffRetryAfterHeader(t *testing.T) {
	err := &googleapi.Error{
		Code:   429,
		Header: http.Header{"Retry-After": []string{"2"}},
	}
	delay := calculateBackoff(100*time.Millisecond, 0, err)
	if delay != 2*time.Second {
		t.Errorf("expected 2s, got %v", delay)
	}
}

func TestCalculateBackoffCapsDelay(t *testing.T) {
	err := &googleapi.Error{Code: 503}
	maxDelay := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond

	delay := calculateBackoff(10*time.Second, 10, err)
	// Jitter can push up to 25% above the cap.
	if delay > maxDelay+maxDelay/4 {
		t.Errorf("delay %v exceeds jittered cap", delay)
	}
	if delay <= 0 {
		t.Errorf("delay must be positive, got %v", delay)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &googleapi.Error{Code: 429}, true},
		{"server error", &googleapi.Error{Code: 500}, true},
		{"bad gateway", &googleapi.Error{Code: 502}, true},
		{"unavailable", &googleapi.Error{Code: 503}, true},
		{"gateway timeout", &googleapi.Error{Code: 504}, true},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"forbidden", &googleapi.Error{Code: 403}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
