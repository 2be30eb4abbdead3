package transcribe

import (
	"strings"

	"mediascribe/pkg/models"
)

// JoinSegments concatenates segment texts in emission order with single-space
// separation and trims the result. This is the one place the transcript
// assembly rule lives.
func JoinSegments(segments []models.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
