package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"careops/domain"
	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type automationRepository struct {
	q              Queryable
	organizationID int64
}

// NewAutomationRepositoryScoped creates a new automation repository with a
// transaction and organization scope
func NewAutomationRepositoryScoped(tx Queryable, organizationID int64) interfaces.AutomationRepository {
	return &automationRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *automationRepository) Create(ctx context.Context, automation *entities.Automation) error {
	scheduleJSON, err := json.Marshal(automation.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}
	configJSON, err := json.Marshal(automation.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	query := `
		INSERT INTO automations (organization_id, name, type, enabled, schedule, config, next_run_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err = r.q.QueryRow(ctx, query,
		r.organizationID,
		automation.Name,
		automation.Type,
		automation.Enabled,
		scheduleJSON,
		configJSON,
		automation.NextRunAt,
	).Scan(&automation.ID, &automation.CreatedAt, &automation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create automation: %w", err)
	}

	automation.OrganizationID = r.organizationID
	return nil
}

func (r *automationRepository) GetByID(ctx context.Context, id int64) (*entities.Automation, error) {
	query := `
		SELECT id, organization_id, name, type, enabled, schedule, config, last_run_at, last_run_status, next_run_at, running_run_id, created_at, updated_at
		FROM automations
		WHERE id = $1 AND organization_id = $2`

	automation, err := scanAutomation(r.q.QueryRow(ctx, query, id, r.organizationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation: %w", err)
	}

	return automation, nil
}

func (r *automationRepository) List(ctx context.Context) ([]*entities.Automation, error) {
	query := `
		SELECT id, organization_id, name, type, enabled, schedule, config, last_run_at, last_run_status, next_run_at, running_run_id, created_at, updated_at
		FROM automations
		WHERE organization_id = $1
		ORDER BY id`

	return r.queryAutomations(ctx, query, r.organizationID)
}

func (r *automationRepository) ListDue(ctx context.Context, now time.Time) ([]*entities.Automation, error) {
	query := `
		SELECT id, organization_id, name, type, enabled, schedule, config, last_run_at, last_run_status, next_run_at, running_run_id, created_at, updated_at
		FROM automations
		WHERE organization_id = $1 AND enabled = TRUE
		  AND next_run_at IS NOT NULL AND next_run_at <= $2
		ORDER BY next_run_at`

	return r.queryAutomations(ctx, query, r.organizationID, now)
}

func (r *automationRepository) GetOrganizationsWithDueAutomations(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT organization_id
		FROM automations
		WHERE enabled = TRUE AND next_run_at IS NOT NULL AND next_run_at <= $1`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations with due automations: %w", err)
	}
	defer rows.Close()

	var organizationIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organization id: %w", err)
		}
		organizationIDs = append(organizationIDs, id)
	}

	return organizationIDs, nil
}

func (r *automationRepository) Update(ctx context.Context, automation *entities.Automation) error {
	scheduleJSON, err := json.Marshal(automation.Schedule)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}
	configJSON, err := json.Marshal(automation.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	query := `
		UPDATE automations
		SET name = $3, type = $4, enabled = $5, schedule = $6, config = $7,
		    next_run_at = $8, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err = r.q.QueryRow(ctx, query,
		automation.ID,
		r.organizationID,
		automation.Name,
		automation.Type,
		automation.Enabled,
		scheduleJSON,
		configJSON,
		automation.NextRunAt,
	).Scan(&automation.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("automation %d not found", automation.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update automation: %w", err)
	}

	return nil
}

// Claim takes the run slot only when no other run holds it. The conditional
// update is the concurrency gate: two simultaneous triggers race on the same
// row and exactly one sees a rows-affected count of one.
func (r *automationRepository) Claim(ctx context.Context, automationID, runID int64) error {
	query := `
		UPDATE automations
		SET running_run_id = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND running_run_id IS NULL`

	tag, err := r.q.Exec(ctx, query, automationID, r.organizationID, runID)
	if err != nil {
		return fmt.Errorf("failed to claim automation %d: %w", automationID, err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a held claim from a missing automation
		existing, err := r.GetByID(ctx, automationID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrAlreadyRunning
	}

	return nil
}

func (r *automationRepository) Release(ctx context.Context, automationID, runID int64, status entities.RunStatus, finishedAt time.Time, nextRunAt *time.Time) error {
	query := `
		UPDATE automations
		SET running_run_id = NULL, last_run_at = $4, last_run_status = $5,
		    next_run_at = $6, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND running_run_id = $3`

	tag, err := r.q.Exec(ctx, query, automationID, r.organizationID, runID, finishedAt, status, nextRunAt)
	if err != nil {
		return fmt.Errorf("failed to release automation %d: %w", automationID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("automation %d is not claimed by run %d", automationID, runID)
	}

	return nil
}

func (r *automationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM automations WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete automation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("automation %d not found", id)
	}

	return nil
}

func (r *automationRepository) queryAutomations(ctx context.Context, query string, args ...any) ([]*entities.Automation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}
	defer rows.Close()

	var automations []*entities.Automation
	for rows.Next() {
		automation, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}
		automations = append(automations, automation)
	}

	return automations, nil
}

func scanAutomation(row pgx.Row) (*entities.Automation, error) {
	var automation entities.Automation
	var scheduleJSON, configJSON []byte

	err := row.Scan(
		&automation.ID,
		&automation.OrganizationID,
		&automation.Name,
		&automation.Type,
		&automation.Enabled,
		&scheduleJSON,
		&configJSON,
		&automation.LastRunAt,
		&automation.LastRunStatus,
		&automation.NextRunAt,
		&automation.RunningRunID,
		&automation.CreatedAt,
		&automation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(scheduleJSON) > 0 {
		if err := json.Unmarshal(scheduleJSON, &automation.Schedule); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
		}
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &automation.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	return &automation, nil
}
