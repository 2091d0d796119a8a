package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Jayprox/ai-agent-nba/narrative"
)

// Defaults for the OpenAI-backed generator.
const (
	DefaultModel   = "gpt-4o"
	DefaultBaseURL = "https://api.openai.com/v1"

	requestTemperature = 0.6
	requestMaxTokens   = 900
)

// ClientConfig configures the OpenAI-backed generator.
type ClientConfig struct {
	APIKey     string
	Model      string       // defaults to DefaultModel
	BaseURL    string       // defaults to DefaultBaseURL
	HTTPClient *http.Client // defaults to a 30s-timeout client
}

// Client calls the OpenAI chat completions API and parses the response
// into a narrative summary.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ narrative.Generator = (*Client)(nil)

// NewClient creates a Client. The API key is required; everything else
// has defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces a summary grounded in the provided inputs.
func (c *Client) Generate(ctx context.Context, in *narrative.Inputs) (*narrative.Summary, error) {
	prompt, err := buildUserPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	text, err := c.call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	summary, err := ParseSummary(text)
	if err != nil {
		return nil, fmt.Errorf("parse AI output: %w", err)
	}
	return summary, nil
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemRules},
			{Role: "user", Content: prompt},
		},
		Temperature:    requestTemperature,
		MaxTokens:      requestMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return cr.Choices[0].Message.Content, nil
}
