package utils

import "fmt"

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired = 10
	ExitAuthExpired  = 11
	ExitAuthInvalid  = 12
	// File operation errors (20-29)
	ExitFileNotFound     = 20
	ExitPermissionDenied = 21
	// Network errors (30-39)
	ExitNetworkError = 30
	ExitTimeout      = 31
	ExitRateLimited  = 32
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidConfig   = 41
	// Remote store errors (50-59)
	ExitStoreError   = 50
	ExitHostingError = 51
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthRequired     = "AUTH_REQUIRED"
	ErrCodeAuthExpired      = "AUTH_EXPIRED"
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeNetworkError     = "NETWORK_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInvalidArgument  = "INVALID_ARGUMENT"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
	ErrCodeStoreError       = "STORE_ERROR"
	ErrCodeHostingError     = "HOSTING_ERROR"
	ErrCodeParseError       = "PARSE_ERROR"
	ErrCodeCancelled        = "CANCELLED"
	ErrCodeUnknown          = "UNKNOWN"
)

// CLIError is a stable, machine-readable error carried to the command layer.
type CLIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"httpStatus,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
}

func (e *CLIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCLIError creates a CLIError with the given code and message.
func NewCLIError(code, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WithHTTPStatus attaches the HTTP status that produced the error.
func (e *CLIError) WithHTTPStatus(status int) *CLIError {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks whether the operation can be retried.
func (e *CLIError) WithRetryable(retryable bool) *CLIError {
	e.Retryable = retryable
	return e
}

// GetExitCode returns the process exit code for an error code.
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:     ExitAuthRequired,
		ErrCodeAuthExpired:      ExitAuthExpired,
		ErrCodeFileNotFound:     ExitFileNotFound,
		ErrCodePermissionDenied: ExitPermissionDenied,
		ErrCodeNetworkError:     ExitNetworkError,
		ErrCodeTimeout:          ExitTimeout,
		ErrCodeRateLimited:      ExitRateLimited,
		ErrCodeInvalidArgument:  ExitInvalidArgument,
		ErrCodeInvalidConfig:    ExitInvalidConfig,
		ErrCodeStoreError:       ExitStoreError,
		ErrCodeHostingError:     ExitHostingError,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}
