package mock

import (
	"context"

	"mediascribe/pkg/models"
)

// Provider satisfies models.Summarizer for testing and for running the
// pipeline without an LLM backend.
type Provider struct {
	Name_         string
	SummarizeFunc func(ctx context.Context, transcript string) (string, error)
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Summarize(ctx context.Context, transcript string) (string, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, transcript)
	}
	return "", nil
}

// NewProvider returns a Provider with a sensible default response.
func NewProvider() *Provider {
	return &Provider{
		Name_: "mock",
		SummarizeFunc: func(_ context.Context, _ string) (string, error) {
			return "Mock Summary Title\nMock summary body for testing.", nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		SummarizeFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// Compile-time check that Provider implements Summarizer.
var _ models.Summarizer = (*Provider)(nil)
