package llm

import "fmt"

// ErrorKind distinguishes terminal API failures by cause.
type ErrorKind string

const (
	// KindAuth marks authentication failures (401). Never retried.
	KindAuth ErrorKind = "auth"
	// KindDecode marks response-decode failures. Never retried.
	KindDecode ErrorKind = "decode"
	// KindTimeoutExhausted marks timeouts on every attempt.
	KindTimeoutExhausted ErrorKind = "timeout_exhausted"
	// KindConnectionExhausted marks connection failures on every attempt.
	KindConnectionExhausted ErrorKind = "connection_exhausted"
	// KindRetriesExhausted marks 5xx/429 responses on every attempt.
	KindRetriesExhausted ErrorKind = "retries_exhausted"
)

// APIError is a terminal failure from the LLM endpoint.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Attempts   int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm api error kind=%s status=%d attempts=%d: %s", e.Kind, e.StatusCode, e.Attempts, e.Message)
	}
	return fmt.Sprintf("llm api error kind=%s attempts=%d: %s", e.Kind, e.Attempts, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
