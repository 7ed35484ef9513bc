package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/database"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
)

// RunRepository is the ledger of sync runs. Every run gets exactly one
// row, created when the run starts and finalized exactly once.
type RunRepository interface {
	// Begin records the start of a run with status running.
	Begin(ctx context.Context, kind, subject string) (*models.SyncRun, error)

	// Finish moves a run to a terminal status and stamps completion.
	Finish(ctx context.Context, id uuid.UUID, status string, itemsProcessed int, errorMessage *string) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.SyncRun, error)

	// List returns the most recent runs, newest first. A limit of 0
	// means no limit.
	List(ctx context.Context, limit int) ([]*models.SyncRun, error)
}

type runRepository struct {
	db *database.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *database.DB) RunRepository {
	return &runRepository{db: db}
}

var _ RunRepository = (*runRepository)(nil)

const runColumns = `id, kind, subject, status, started_at, completed_at, items_processed, error_message`

func (r *runRepository) Begin(ctx context.Context, kind, subject string) (*models.SyncRun, error) {
	run := &models.SyncRun{
		Kind:    kind,
		Subject: subject,
		Status:  models.RunStatusRunning,
	}

	query := `
		INSERT INTO sync_runs (kind, subject, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, started_at`

	err := r.db.QueryRow(ctx, query, kind, subject, models.RunStatusRunning, time.Now()).
		Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}

	return run, nil
}

func (r *runRepository) Finish(ctx context.Context, id uuid.UUID, status string, itemsProcessed int, errorMessage *string) error {
	query := `
		UPDATE sync_runs SET
			status = $2, items_processed = $3, error_message = $4, completed_at = $5
		WHERE id = $1
		RETURNING id`

	var returned uuid.UUID
	err := r.db.QueryRow(ctx, query, id, status, itemsProcessed, errorMessage, time.Now()).
		Scan(&returned)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

func (r *runRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE id = $1`

	run := &models.SyncRun{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Kind,
		&run.Subject,
		&run.Status,
		&run.StartedAt,
		&run.CompletedAt,
		&run.ItemsProcessed,
		&run.ErrorMessage,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

func (r *runRepository) List(ctx context.Context, limit int) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run := &models.SyncRun{}
		err := rows.Scan(
			&run.ID,
			&run.Kind,
			&run.Subject,
			&run.Status,
			&run.StartedAt,
			&run.CompletedAt,
			&run.ItemsProcessed,
			&run.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
