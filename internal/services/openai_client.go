package services

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

	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/utils"
)

// CompletionClient talks to an OpenAI-compatible chat completions endpoint.
// Both methods return the raw text of the completion; parsing the JSON
// variant is the caller's problem.
type CompletionClient interface {
	GenerateLessonContent(ctx context.Context, prompt string) (string, error)
	GenerateLessonJSON(ctx context.Context, prompt string) (string, error)
}

const (
	noPromptSentinel = "No prompt provided."

	defaultMinBackoff = 400 * time.Millisecond
	defaultMaxBackoff = 1500 * time.Millisecond
)

var errEmptyCompletion = errors.New("empty response from completion service")

type openAIClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	timeout    time.Duration
	maxRetries int
	minBackoff time.Duration
	maxBackoff time.Duration
	httpClient *http.Client
}

func NewOpenAIClient(log *logger.Logger) (CompletionClient, error) {
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log)
	model := utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log)
	maxTokens := utils.GetEnvAsInt("OPENAI_MAX_TOKENS", 1200, log)
	timeoutMS := utils.GetEnvAsInt("OPENAI_TIMEOUT_MS", 20000, log)
	maxRetries := utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 2, log)

	return &openAIClient{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		timeout:    time.Duration(timeoutMS) * time.Millisecond,
		maxRetries: maxRetries,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		httpClient: &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type completionHTTPError struct {
	StatusCode int
	Body       string
}

func (e *completionHTTPError) Error() string {
	return fmt.Sprintf("completion service http %d: %s", e.StatusCode, e.Body)
}

// Transient per policy: timeout/cancellation, 429, any 5xx. Everything else,
// including an empty completion, fails immediately.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *completionHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}

func clampBackoff(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// GenerateLessonContent returns a short free-form lesson for the prompt.
func (c *openAIClient) GenerateLessonContent(ctx context.Context, prompt string) (string, error) {
	safePrompt := strings.TrimSpace(prompt)
	if safePrompt == "" {
		return noPromptSentinel, nil
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful tutor. Create a short, structured lesson."},
			{Role: "user", Content: safePrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.4,
	}
	return c.complete(ctx, req)
}

// GenerateLessonJSON asks for a strict JSON object and returns the raw JSON
// string, not yet parsed.
func (c *openAIClient) GenerateLessonJSON(ctx context.Context, prompt string) (string, error) {
	safePrompt := strings.TrimSpace(prompt)
	if safePrompt == "" {
		return noPromptSentinel, nil
	}

	userContent := strings.Join([]string{
		"Return ONLY JSON with keys: title (string), objectives (string[]),",
		"outline ({heading:string, bullets:string[]}[]), codeSamples ({language:string, code:string}[]),",
		"exercises ({q:string, a?:string}[]), summary (string).",
		"No markdown, no prose outside JSON.",
		"",
		"Prompt: " + safePrompt,
	}, "\n")

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a teaching assistant that returns strictly valid JSON for lessons."},
			{Role: "user", Content: userContent},
		},
		MaxTokens:      c.maxTokens,
		Temperature:    0.2,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}
	return c.complete(ctx, req)
}

// complete runs the retry loop. One timeout clock covers every attempt and
// every backoff sleep; when it elapses the cancellation is the final error.
// Backoff doubles from minBackoff and clamps at maxBackoff, no jitter.
func (c *openAIClient) complete(ctx context.Context, req chatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	delay := c.minBackoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay = clampBackoff(delay*2, c.minBackoff, c.maxBackoff)
		}

		text, err := c.doOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isTransient(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		c.log.Warn("Completion request failed, may retry",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"error", err.Error(),
		)
	}

	return "", lastErr
}

func (c *openAIClient) doOnce(ctx context.Context, body chatRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &completionHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("completion decode error: %w; raw=%s", err, string(raw))
	}
	if len(parsed.Choices) == 0 {
		return "", errEmptyCompletion
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}
