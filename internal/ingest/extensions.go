package ingest

import (
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	// video
	".mkv": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".flv": {}, ".wmv": {},
	// audio
	".mp3": {}, ".wav": {}, ".aac": {}, ".flac": {}, ".ogg": {}, ".wma": {}, ".m4a": {},
}

// AllowedExtension reports whether the file has a supported media extension.
// The check is case-insensitive.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}
