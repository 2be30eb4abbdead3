package models

import "context"

// Decoder converts a media file into a normalized audio artifact suitable for
// speech recognition (mono, 16kHz, 16-bit PCM WAV).
type Decoder interface {
	// ExtractAudio writes the normalized audio to audioPath. The caller owns
	// the output file and is responsible for deleting it.
	ExtractAudio(ctx context.Context, mediaPath, audioPath string) error
}

// Segment is one piece of recognized speech, in emission order.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcriber converts an audio artifact into speech segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// Summarizer condenses a transcript into a short titled summary. Callers
// inject this interface rather than a concrete provider.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}
