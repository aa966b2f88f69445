// Package llm generates goal and task breakdowns and report narration
// through an OpenAI compatible chat-completions endpoint.
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

	"github.com/felixgeelhaar/stride/internal/breakdown/domain"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.5
	DefaultMaxTokens   = 800

	TaskTemperature   = 0.7
	ReportTemperature = 0.8

	maxErrorBody = 4096
)

const systemPrompt = `You are a goal planning assistant. Break down the user's goal into 5-7 actionable tasks.

Respond ONLY with this JSON structure (keep it concise):
{
  "goal": {
    "title": "string",
    "description": "string (1 sentence)",
    "estimatedDuration": "string (e.g., '2 months')",
    "category": "string (career|education|fitness|personal|creative|financial|other)"
  },
  "tasks": [
    {
      "title": "string (brief, actionable)",
      "description": "string (1-2 sentences)",
      "estimatedDuration": "string",
      "priority": "high|medium|low",
      "order": number
    }
  ]
}

Keep tasks specific and realistic. Limit to 5-7 tasks max.`

// Config configures the client.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
}

// withDefaults fills settings left at zero.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	return c
}

// Client implements domain.Generator and domain.TaskGenerator. All calls
// share one breaker.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *slog.Logger
}

var (
	_ domain.Generator     = (*Client)(nil)
	_ domain.TaskGenerator = (*Client)(nil)
)

// NewClient creates a breakdown client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm-breakdown",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return c
}

// State returns the breaker state, for health reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}

// Breakdown asks the model to split goal into tasks.
func (c *Client) Breakdown(ctx context.Context, goal, extra string) (*domain.GoalBreakdown, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, domain.ErrEmptyGoal
	}

	start := time.Now()
	var breakdown domain.GoalBreakdown
	if err := c.chatJSON(ctx, systemPrompt, UserPrompt(goal, extra), DefaultTemperature, &breakdown); err != nil {
		return nil, err
	}
	if err := breakdown.Validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("goal breakdown generated",
		"model", c.config.Model,
		"tasks", len(breakdown.Tasks),
		"duration", time.Since(start),
	)
	return &breakdown, nil
}

// chatJSON runs one completion through the breaker and decodes the reply
// into out.
func (c *Client) chatJSON(ctx context.Context, system, user string, temperature float64, out any) error {
	if c.config.APIKey == "" || c.config.URL == "" {
		return domain.ErrNotConfigured
	}

	content, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, system, user, temperature)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.ErrUnavailable
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// UserPrompt renders the user message for a goal.
func UserPrompt(goal, extra string) string {
	prompt := `Break down this goal: "` + goal + `"`
	if extra != "" {
		prompt += "\n\nAdditional context: " + extra
	}
	return prompt
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete returns the content of the first choice.
func (c *Client) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    temperature,
		MaxTokens:      DefaultMaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", responseError(resp)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no response from model", domain.ErrMalformedResponse)
	}
	return completion.Choices[0].Message.Content, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: status=%d body=%s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
}
