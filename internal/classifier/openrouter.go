package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

// ClientConfig configures the chat completion client.
type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	// MinInterval spaces consecutive API calls to stay under provider
	// rate limits.
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// DefaultClientConfig returns production defaults. The API key always
// comes from configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:     "https://openrouter.ai/api/v1",
		Model:       "google/gemini-2.0-flash-exp:free",
		Temperature: 0.1,
		MaxTokens:   10,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		MinInterval: time.Second,
	}
}

// UsageStats accumulates API consumption over a process run.
type UsageStats struct {
	Requests   int     `json:"requests"`
	Retries    int     `json:"retries"`
	TotalCost  float64 `json:"total_cost"`
	UsedTokens int     `json:"used_tokens"`
}

// Client talks to an OpenRouter-compatible chat completions endpoint.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.Interface

	mu    sync.Mutex
	usage UsageStats
}

// NewClient builds a Client. It fails fast on a missing API key so a
// misconfigured run aborts before burning through the batch.
func NewClient(cfg ClientConfig, httpClient *http.Client, log logger.Interface) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key: %w", domain.ErrFatalConfig)
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		log:        log.WithComponent("openrouter"),
	}, nil
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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int     `json:"total_tokens"`
		Cost        float64 `json:"cost"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single-turn prompt and returns the raw model answer.
// Authentication and billing failures wrap ErrFatalConfig since retrying
// them cannot help; rate limits and transient errors are retried with
// exponential backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.mu.Lock()
			c.usage.Retries++
			c.mu.Unlock()

			delay := c.cfg.RetryDelay * time.Duration(1<<(attempt-1))
			c.log.Warn("Retrying API call", "attempt", attempt, "delay", delay.String())
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		answer, err := c.complete(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		if domain.IsFatalConfig(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("api call failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling api: %w", err)
	}
	defer resp.Body.Close()

	c.mu.Lock()
	c.usage.Requests++
	c.mu.Unlock()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusPaymentRequired:
		return "", fmt.Errorf("api rejected credentials (%d): %s: %w",
			resp.StatusCode, apiErrorMessage(payload), domain.ErrFatalConfig)
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("rate limited: %s", apiErrorMessage(payload))
	default:
		return "", fmt.Errorf("api returned status %d: %s",
			resp.StatusCode, apiErrorMessage(payload))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	c.mu.Lock()
	c.usage.UsedTokens += parsed.Usage.TotalTokens
	c.usage.TotalCost += parsed.Usage.Cost
	c.mu.Unlock()

	return parsed.Choices[0].Message.Content, nil
}

func apiErrorMessage(payload []byte) string {
	var parsed apiError
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return "no error detail"
}

// Usage returns a snapshot of accumulated API consumption.
func (c *Client) Usage() UsageStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}
