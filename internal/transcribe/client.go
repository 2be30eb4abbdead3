// Package transcribe is the adapter for the external Whisper ASR HTTP service.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediascribe/pkg/models"
)

// Sentinel errors for transcription service failures.
var (
	ErrServiceUnreachable = errors.New("transcription service unreachable")
	ErrServiceError       = errors.New("transcription service error")
	ErrTimeout            = errors.New("transcription timeout")
)

// HTTPClient implements models.Transcriber against a Whisper ASR webservice.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new transcription client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type asrResponse struct {
	Text     string           `json:"text"`
	Segments []models.Segment `json:"segments"`
}

// Transcribe uploads the audio artifact and returns the recognized segments in
// emission order.
func (c *HTTPClient) Transcribe(ctx context.Context, audioPath string) ([]models.Segment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio artifact: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading audio artifact: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	u := c.baseURL + "/asr?task=transcribe&output=json"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrServiceError, resp.StatusCode)
	}

	var asr asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&asr); err != nil {
		return nil, fmt.Errorf("decoding transcription response: %w", err)
	}

	return asr.Segments, nil
}

// classifyError maps transport failures onto the package sentinels.
func classifyError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
}

var _ models.Transcriber = (*HTTPClient)(nil)
