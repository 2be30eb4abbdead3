package summarize

import "mediascribe/internal/summarize/core"

var (
	ErrProviderUnavailable = core.ErrProviderUnavailable
	ErrInferenceTimeout    = core.ErrInferenceTimeout
	ErrInvalidResponse     = core.ErrInvalidResponse
	ErrEmptyTranscript     = core.ErrEmptyTranscript
)
