package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"mediascribe/internal/config"
	"mediascribe/internal/summarize/core"
	"mediascribe/pkg/models"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// Provider implements models.Summarizer using the OpenAI chat completions API.
type Provider struct {
	cfg     config.OpenAIConfig
	baseURL string
	client  *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg, baseURL: chatCompletionsURL, client: &http.Client{}}
}

// NewProviderWithBaseURL is used by tests to point at a stub server.
func NewProviderWithBaseURL(cfg config.OpenAIConfig, baseURL string) *Provider {
	return &Provider{cfg: cfg, baseURL: baseURL, client: &http.Client{}}
}

func (p *Provider) Name() string { return "openai" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
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
}

func (p *Provider) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", core.ErrEmptyTranscript
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: core.SystemPrompt},
			{Role: "user", Content: fmt.Sprintf(core.UserPrompt, transcript)},
		},
		MaxTokens:   400,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", core.ErrProviderUnavailable, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidResponse, err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", core.ErrInvalidResponse)
	}

	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}

func classifyError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", core.ErrInferenceTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrInferenceTimeout, err)
	}
	return fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
}

var _ models.Summarizer = (*Provider)(nil)
