// Package core holds the sentinel errors and prompt text shared by the
// summarize factory and its provider subpackages. It exists to break the
// import cycle between package summarize and the providers; package
// summarize re-exports every identifier defined here.
package core

import "errors"

var (
	ErrProviderUnavailable = errors.New("summary provider unavailable")
	ErrInferenceTimeout    = errors.New("summary inference timeout")
	ErrInvalidResponse     = errors.New("summary provider returned invalid response")
	ErrEmptyTranscript     = errors.New("empty transcript")
)

// SystemPrompt and UserPrompt are shared by the HTTP providers. The summary is
// asked to open with a title line; the first non-empty line becomes the job title.
const SystemPrompt = "I would like for you to assume the role of a court clerk."

const UserPrompt = `Generate a concise summary of the text below.
Text: %s

Add a title to the summary.

Make sure your summary has useful and true information about the main points of the topic. Begin with a short introduction explaining the topic. If you can, use bullet points to list important details, and finish your summary with a concluding sentence.`
