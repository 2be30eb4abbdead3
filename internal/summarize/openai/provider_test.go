package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediascribe/internal/config"
	"mediascribe/internal/summarize"
	"mediascribe/internal/summarize/openai"
)

func TestSummarize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "the verdict was read")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":" Court Hearing A\nThe hearing covered... "}}]}`))
	}))
	defer srv.Close()

	p := openai.NewProviderWithBaseURL(
		config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}, srv.URL)

	summary, err := p.Summarize(context.Background(), "the verdict was read")
	require.NoError(t, err)
	assert.Equal(t, "Court Hearing A\nThe hearing covered...", summary)
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	p := openai.NewProviderWithBaseURL(config.OpenAIConfig{APIKey: "sk-test"}, "http://unused")
	_, err := p.Summarize(context.Background(), "   ")
	assert.ErrorIs(t, err, summarize.ErrEmptyTranscript)
}

func TestSummarize_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := openai.NewProviderWithBaseURL(config.OpenAIConfig{APIKey: "sk-test"}, srv.URL)
	_, err := p.Summarize(context.Background(), "some transcript")
	assert.ErrorIs(t, err, summarize.ErrProviderUnavailable)
}

func TestSummarize_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := openai.NewProviderWithBaseURL(config.OpenAIConfig{APIKey: "sk-test"}, srv.URL)
	_, err := p.Summarize(context.Background(), "some transcript")
	assert.ErrorIs(t, err, summarize.ErrInvalidResponse)
}
