package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"archive-backend/internal/llm"
)

const (
	chatURL  = "https://api.mistral.ai/v1/chat/completions"
	embedURL = "https://api.mistral.ai/v1/embeddings"

	// DefaultModel is used when callers do not name a model.
	DefaultModel = "mistral-medium-latest"
	embedModel   = "mistral-embed"

	// EmbeddingDimensions is the native mistral-embed vector length.
	EmbeddingDimensions = 1024

	maxTokensLimit  = 4096
	defaultRetries  = 3
	defaultBaseWait = 5 * time.Second
	defaultTimeout  = 90 * time.Second
)

// Client implements llm.Client against the Mistral chat and embeddings APIs.
// It is stateless across calls apart from HTTP connection reuse.
type Client struct {
	model      string
	httpClient *http.Client

	chatURL    string
	embedURL   string
	maxRetries int
	baseWait   time.Duration
}

// NewClient constructs a Mistral client with bearer-token auth. A zero or
// negative timeout falls back to 90 seconds.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = timeout

	return &Client{
		model:      model,
		httpClient: httpClient,
		chatURL:    chatURL,
		embedURL:   embedURL,
		maxRetries: defaultRetries,
		baseWait:   defaultBaseWait,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete runs one chat-completion call with retry on transient failures.
// Backoff grows linearly with the attempt index; rate-limit responses wait
// double the generic multiplier. 401 and decode failures fail immediately.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 || maxTokens > maxTokensLimit {
		maxTokens = maxTokensLimit
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: formatPrompt(req.Prompt)}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var lastKind llm.ErrorKind
	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if isTimeout(err) {
				lastKind, lastErr, lastStatus = llm.KindTimeoutExhausted, err, 0
			} else {
				lastKind, lastErr, lastStatus = llm.KindConnectionExhausted, err, 0
			}
			if waitErr := c.wait(ctx, attempt, 1); waitErr != nil {
				return "", waitErr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return "", &llm.APIError{Kind: llm.KindDecode, Attempts: attempt, Message: "read response body", Err: readErr}
			}
			return decodeChatContent(body, attempt)

		case resp.StatusCode == http.StatusTooManyRequests:
			lastKind, lastErr, lastStatus = llm.KindRetriesExhausted, nil, resp.StatusCode
			// Rate limit: back off twice as long before retrying.
			if waitErr := c.wait(ctx, attempt, 2); waitErr != nil {
				return "", waitErr
			}

		case resp.StatusCode == http.StatusUnauthorized:
			return "", &llm.APIError{Kind: llm.KindAuth, StatusCode: resp.StatusCode, Attempts: attempt, Message: "invalid API key or authentication failed"}

		case resp.StatusCode >= 500:
			lastKind, lastErr, lastStatus = llm.KindRetriesExhausted, nil, resp.StatusCode
			if waitErr := c.wait(ctx, attempt, 1); waitErr != nil {
				return "", waitErr
			}

		default:
			return "", fmt.Errorf("mistral api request failed: %s", extractErrorDetail(resp.StatusCode, body))
		}
	}

	apiErr := &llm.APIError{Kind: lastKind, StatusCode: lastStatus, Attempts: c.maxRetries, Err: lastErr}
	switch lastKind {
	case llm.KindTimeoutExhausted:
		apiErr.Message = "all requests timed out"
	case llm.KindConnectionExhausted:
		apiErr.Message = "unable to connect to mistral api"
	default:
		apiErr.Message = "maximum retry attempts reached"
	}
	return "", apiErr
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the mistral-embed vector for the given text. Failures are
// reported to the caller, which degrades to a zero vector; no retry here.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	payload, err := json.Marshal(embedRequest{Model: embedModel, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.embedURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embed request failed: %s", extractErrorDetail(resp.StatusCode, body))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &llm.APIError{Kind: llm.KindDecode, Attempts: 1, Message: "decode embed response", Err: err}
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, &llm.APIError{Kind: llm.KindDecode, Attempts: 1, Message: "embed response missing data"}
	}
	return parsed.Data[0].Embedding, nil
}

func decodeChatContent(body []byte, attempt int) (string, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.APIError{Kind: llm.KindDecode, Attempts: attempt, Message: "invalid response from api", Err: err}
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("mistral api error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", &llm.APIError{Kind: llm.KindDecode, Attempts: attempt, Message: "response missing choices"}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &llm.APIError{Kind: llm.KindDecode, Attempts: attempt, Message: "response empty content"}
	}
	return content, nil
}

// wait sleeps for baseWait scaled linearly by attempt and the given multiplier.
func (c *Client) wait(ctx context.Context, attempt, multiplier int) error {
	d := c.baseWait * time.Duration(attempt*multiplier)
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}

func extractErrorDetail(status int, body []byte) string {
	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fmt.Sprintf("status code: %d", status)
}

var _ llm.Client = (*Client)(nil)
