// Package summarize selects and wraps the LLM provider that condenses
// transcripts into titled summaries.
package summarize

import (
	"fmt"

	"mediascribe/internal/config"
	"mediascribe/internal/summarize/mock"
	"mediascribe/internal/summarize/ollama"
	"mediascribe/internal/summarize/openai"
	"mediascribe/pkg/models"
)

// NewProvider constructs the appropriate summary provider based on config.
// Called once at server startup.
func NewProvider(cfg config.SummaryConfig) (models.Summarizer, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown summary provider %q: must be one of openai, ollama, mock", cfg.Provider)
	}
}
