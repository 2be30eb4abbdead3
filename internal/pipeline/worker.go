package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/cache"
	"mediascribe/internal/store"
	"mediascribe/internal/transcribe"
	"mediascribe/pkg/models"
)

// Worker executes one claimed job's pipeline to a terminal state:
// decode → transcribe → summarize → persist, with cleanup on every exit path.
type Worker struct {
	store       store.Store
	cache       cache.Cache
	decoder     models.Decoder
	transcriber models.Transcriber
	summarizer  models.Summarizer

	uploadDir      string
	audioDir       string
	summaryTimeout time.Duration
}

func NewWorker(st store.Store, ca cache.Cache, dec models.Decoder, tr models.Transcriber,
	sum models.Summarizer, uploadDir, audioDir string, summaryTimeout time.Duration) *Worker {
	return &Worker{
		store:          st,
		cache:          ca,
		decoder:        dec,
		transcriber:    tr,
		summarizer:     sum,
		uploadDir:      uploadDir,
		audioDir:       audioDir,
		summaryTimeout: summaryTimeout,
	}
}

// Run processes a job already claimed as processing. Adapter failures never
// escape: they become the job's terminal state. The temporary audio artifact
// and the uploaded source file are deleted on every exit path.
func (w *Worker) Run(ctx context.Context, job *models.Job) {
	sourcePath := filepath.Join(w.uploadDir, job.Filename)
	audioPath := filepath.Join(w.audioDir, audioArtifactName(job.ID))

	defer w.removeIfPresent(audioPath, "temporary audio artifact")
	defer w.removeIfPresent(sourcePath, "uploaded source file")
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in worker", "job_id", job.ID, "panic", r)
			w.fail(ctx, job)
		}
	}()

	start := time.Now()
	if err := w.process(ctx, job, sourcePath, audioPath); err != nil {
		slog.Error("job failed", "job_id", job.ID, "filename", job.Filename, "error", err)
		w.fail(ctx, job)
		return
	}

	_ = w.cache.SetJobStatus(ctx, job.Filename, models.JobStatusCompleted, StatusTTL)
	slog.Info("job completed", "job_id", job.ID, "filename", job.Filename,
		"duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) process(ctx context.Context, job *models.Job, sourcePath, audioPath string) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source file missing: %w", err)
	}

	if err := w.decoder.ExtractAudio(ctx, sourcePath, audioPath); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	segments, err := w.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	transcript := transcribe.JoinSegments(segments)

	title, summary := w.summarize(ctx, job, transcript)

	if err := w.store.CompleteJob(ctx, job.ID, title, transcript, summary); err != nil {
		return fmt.Errorf("persist result: %w", err)
	}
	return nil
}

// summarize invokes the summarizer adapter. Failure here is not fatal to the
// job: the sentinel values go in instead and the pipeline continues.
func (w *Worker) summarize(ctx context.Context, job *models.Job, transcript string) (title, summary string) {
	sctx, cancel := context.WithTimeout(ctx, w.summaryTimeout)
	defer cancel()

	summary, err := w.summarizer.Summarize(sctx, transcript)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			slog.Warn("summarization failed, continuing without summary",
				"job_id", job.ID, "provider", w.summarizer.Name(), "error", err)
		}
		return models.NoTitle, models.NoSummary
	}
	return deriveTitle(summary), summary
}

// fail writes the failed status without touching result columns. When the
// surrounding context is already cancelled (shutdown mid-pipeline) the job is
// left in processing for the startup recovery sweep instead.
func (w *Worker) fail(ctx context.Context, job *models.Job) {
	if ctx.Err() != nil {
		slog.Warn("shutdown during job, leaving for recovery sweep", "job_id", job.ID)
		return
	}
	if err := w.store.FailJob(ctx, job.ID); err != nil {
		slog.Error("marking job failed", "job_id", job.ID, "error", err)
		return
	}
	_ = w.cache.SetJobStatus(ctx, job.Filename, models.JobStatusFailed, StatusTTL)
}

func (w *Worker) removeIfPresent(path, what string) {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("cleanup failed", "path", path, "artifact", what, "error", err)
	}
}

func audioArtifactName(id uuid.UUID) string {
	return "audio_" + id.String() + ".wav"
}

// deriveTitle returns the first non-empty line of the summary. The rule is
// deliberately explicit here rather than buried in formatting code.
func deriveTitle(summary string) string {
	for _, line := range strings.Split(summary, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return models.NoTitle
}
