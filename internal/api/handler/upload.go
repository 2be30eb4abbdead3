package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mediascribe/internal/api/response"
	"mediascribe/internal/ingest"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/store"
)

// maxUploadBytes caps a single upload request body.
const maxUploadBytes = 2 << 30

// Admitter is the slice of the admission gate the upload handler depends on.
type Admitter interface {
	Admit(ctx context.Context, filename string) (*pipeline.Admission, error)
}

type uploadResponse struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// NewUploadHandler returns an http.HandlerFunc for POST /api/v1/uploads.
// The file is stored under a unique name so repeated uploads of the same
// source become independent jobs, matching the behavior of the web form.
func NewUploadHandler(gate Admitter, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"multipart field 'file' is required", nil)
			return
		}
		defer file.Close()

		if !ingest.AllowedExtension(header.Filename) {
			response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
				"file extension is not a supported media format", nil)
			return
		}

		storedName := uniqueFilename(header.Filename)
		dstPath := filepath.Join(uploadDir, storedName)

		dst, err := os.Create(dstPath)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not store uploaded file", nil)
			return
		}
		if _, err := io.Copy(dst, file); err != nil {
			dst.Close()
			os.Remove(dstPath)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not store uploaded file", nil)
			return
		}
		if err := dst.Close(); err != nil {
			os.Remove(dstPath)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not store uploaded file", nil)
			return
		}

		adm, err := gate.Admit(r.Context(), storedName)
		if err != nil {
			os.Remove(dstPath)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"could not queue transcription job", nil)
			return
		}

		response.Accepted(w, uploadResponse{
			JobID:    adm.Job.ID.String(),
			Filename: adm.Job.Filename,
			Status:   adm.Job.Status,
			Message:  admitMessage(adm.Outcome),
		})
	}
}

// uniqueFilename embeds a fresh UUID between the base name and the extension.
func uniqueFilename(original string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s%s", stem, hex, ext)
}

func admitMessage(outcome store.AdmitOutcome) string {
	switch outcome {
	case store.AdmitRetry:
		return "previous attempt failed, job requeued"
	case store.AdmitDuplicate:
		return "file already submitted"
	default:
		return "queued for transcription"
	}
}
