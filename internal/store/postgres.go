package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediascribe/pkg/models"
)

const jobColumns = "id, filename, title, transcription, summary, status, created_at"

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Filename, &j.Title, &j.Transcription, &j.Summary, &j.Status, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// errAdmitRaced signals that an insert lost a race on the filename unique
// index and admission should be re-run against the now-existing row.
var errAdmitRaced = errors.New("admission raced with concurrent insert")

// AdmitJob serializes concurrent submissions of the same filename. An existing
// row is locked for the duration of the transaction. When no row exists yet
// FOR UPDATE has nothing to lock, so two brand-new submissions can both reach
// the insert; the loser's unique violation is retried and resolves as a
// duplicate (or a retry of a failed job) once the winner commits.
func (s *PostgresStore) AdmitJob(ctx context.Context, id uuid.UUID, filename string) (AdmitOutcome, *models.Job, error) {
	for {
		outcome, job, err := s.admitOnce(ctx, id, filename)
		if errors.Is(err, errAdmitRaced) {
			continue
		}
		return outcome, job, err
	}
}

func (s *PostgresStore) admitOnce(ctx context.Context, id uuid.UUID, filename string) (AdmitOutcome, *models.Job, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, nil, fmt.Errorf("begin admission tx: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := scanJob(tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE filename = $1 FOR UPDATE`, filename))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, fmt.Errorf("lookup job by filename: %w", err)
	}

	var outcome AdmitOutcome
	var job *models.Job

	switch {
	case existing == nil:
		job, err = scanJob(tx.QueryRow(ctx,
			`INSERT INTO jobs (id, filename, status) VALUES ($1, $2, $3) RETURNING `+jobColumns,
			id, filename, models.JobStatusPending))
		if err != nil {
			if isDuplicateKeyError(err) {
				return 0, nil, errAdmitRaced
			}
			return 0, nil, fmt.Errorf("insert job: %w", err)
		}
		outcome = AdmitNew

	case existing.Status == models.JobStatusFailed:
		// Retry policy: reuse the identity, reset to pending.
		job, err = scanJob(tx.QueryRow(ctx,
			`UPDATE jobs SET status = $2 WHERE id = $1 RETURNING `+jobColumns,
			existing.ID, models.JobStatusPending))
		if err != nil {
			return 0, nil, fmt.Errorf("reset failed job: %w", err)
		}
		outcome = AdmitRetry

	default:
		job = existing
		outcome = AdmitDuplicate
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit admission tx: %w", err)
	}
	return outcome, job, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) GetJobByFilename(ctx context.Context, filename string) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE filename = $1`, filename))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job by filename: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ClaimPendingJob picks the oldest pending job and flips it to processing in
// one statement. SKIP LOCKED keeps concurrent claimers from blocking on or
// double-claiming the same row.
func (s *PostgresStore) ClaimPendingJob(ctx context.Context) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`UPDATE jobs SET status = $1
		 WHERE id = (
		   SELECT id FROM jobs WHERE status = $2
		   ORDER BY created_at, id
		   LIMIT 1
		   FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+jobColumns,
		models.JobStatusProcessing, models.JobStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("claim pending job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) CompleteJob(ctx context.Context, id uuid.UUID, title, transcription, summary string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET title = $2, transcription = $3, summary = $4, status = $5
		 WHERE id = $1 AND status = $6`,
		id, title, transcription, summary, models.JobStatusCompleted, models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete job %s: %w (not processing)", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FailJob(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2 WHERE id = $1 AND status = $3`,
		id, models.JobStatusFailed, models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fail job %s: %w (not processing)", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ResetProcessingJobs(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE status = $2`,
		models.JobStatusPending, models.JobStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("reset processing jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM jobs WHERE id = $1 AND status <> $2`,
		id, models.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Row either absent or held by a worker; tell the caller which.
		var status string
		err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check job status: %w", err)
		}
		return ErrJobProcessing
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
