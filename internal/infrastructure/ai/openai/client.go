// Package openai provides the chat-completions client used for reply
// synthesis, nutrition advice, and recommendation scoring
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mealsmith/api/internal/infrastructure/config"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
)

// Client implements the CompletionService interface against any
// OpenAI-compatible chat-completions endpoint (OpenAI, Ollama, vLLM)
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

var _ outbound.CompletionService = (*Client)(nil)

// NewClient creates a client from config. The HTTP client timeout bounds
// every completion call; callers fall back to local synthesis when it fires.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     cfg.AI.BaseURL,
		apiKey:      cfg.AI.APIKey,
		model:       cfg.AI.Model,
		maxTokens:   cfg.AI.MaxTokens,
		temperature: cfg.AI.Temperature,
		client: &http.Client{
			Timeout: cfg.AI.RequestTimeout,
		},
		logger: logger,
	}
}

// Chat-completions wire structures
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a single system+user exchange and returns the reply text.
// Any transport, status, or decode failure comes back as an external-service
// error so callers can degrade to their fallback path.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal completion request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create completion request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewExternalServiceError("language model", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewExternalServiceError("language model", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalServiceError("language model",
			fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(body)))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", apperrors.NewExternalServiceError("language model", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", apperrors.NewExternalServiceError("language model", fmt.Errorf("no response choices returned"))
	}

	c.logger.Debug("completion call succeeded",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)

	return chatResp.Choices[0].Message.Content, nil
}
