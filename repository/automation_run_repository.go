package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type automationRunRepository struct {
	q              Queryable
	organizationID int64
}

// NewAutomationRunRepositoryScoped creates a new automation run repository
// with a transaction and organization scope
func NewAutomationRunRepositoryScoped(tx Queryable, organizationID int64) interfaces.AutomationRunRepository {
	return &automationRunRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *automationRunRepository) Create(ctx context.Context, run *entities.AutomationRun) error {
	metricsJSON, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal run metrics: %w", err)
	}

	if run.Status == "" {
		run.Status = entities.RunStatusRunning
	}

	query := `
		INSERT INTO automation_runs (automation_id, organization_id, status, summary, metrics)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, started_at`

	err = r.q.QueryRow(ctx, query,
		run.AutomationID,
		r.organizationID,
		run.Status,
		run.Summary,
		metricsJSON,
	).Scan(&run.ID, &run.StartedAt)

	if err != nil {
		return fmt.Errorf("failed to create automation run: %w", err)
	}

	run.OrganizationID = r.organizationID
	return nil
}

func (r *automationRunRepository) GetByID(ctx context.Context, id int64) (*entities.AutomationRun, error) {
	query := `
		SELECT id, automation_id, organization_id, status, started_at, finished_at, summary, metrics, error
		FROM automation_runs
		WHERE id = $1 AND organization_id = $2`

	run, err := scanAutomationRun(r.q.QueryRow(ctx, query, id, r.organizationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation run: %w", err)
	}

	return run, nil
}

func (r *automationRunRepository) ListByAutomation(ctx context.Context, automationID int64, limit int) ([]*entities.AutomationRun, error) {
	query := `
		SELECT id, automation_id, organization_id, status, started_at, finished_at, summary, metrics, error
		FROM automation_runs
		WHERE organization_id = $1 AND automation_id = $2
		ORDER BY started_at DESC
		LIMIT $3`

	rows, err := r.q.Query(ctx, query, r.organizationID, automationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.AutomationRun
	for rows.Next() {
		run, err := scanAutomationRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// Finalize moves a run from running to a terminal status. A run may only
// leave the running state once; a second finalize attempt fails.
func (r *automationRunRepository) Finalize(ctx context.Context, run *entities.AutomationRun) error {
	if !run.IsTerminal() {
		return fmt.Errorf("cannot finalize run %d with non-terminal status %q", run.ID, run.Status)
	}
	if run.FinishedAt == nil {
		return fmt.Errorf("cannot finalize run %d without a finish time", run.ID)
	}

	metricsJSON, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal run metrics: %w", err)
	}

	query := `
		UPDATE automation_runs
		SET status = $3, finished_at = $4, summary = $5, metrics = $6, error = $7
		WHERE id = $1 AND organization_id = $2 AND status = 'running'`

	tag, err := r.q.Exec(ctx, query,
		run.ID,
		r.organizationID,
		run.Status,
		run.FinishedAt,
		run.Summary,
		metricsJSON,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize automation run %d: %w", run.ID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("automation run %d is not in the running state", run.ID)
	}

	return nil
}

func scanAutomationRun(row pgx.Row) (*entities.AutomationRun, error) {
	var run entities.AutomationRun
	var metricsJSON []byte

	err := row.Scan(
		&run.ID,
		&run.AutomationID,
		&run.OrganizationID,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Summary,
		&metricsJSON,
		&run.Error,
	)
	if err != nil {
		return nil, err
	}

	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &run.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run metrics: %w", err)
		}
	}

	return &run, nil
}
