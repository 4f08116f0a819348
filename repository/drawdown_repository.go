package repository

import (
	"context"
	"fmt"

	"careops/domain/entities"
	"careops/domain/interfaces"
)

type drawdownRepository struct {
	q              Queryable
	organizationID int64
}

// NewDrawdownRepositoryScoped creates a new drawdown repository with a
// transaction and organization scope
func NewDrawdownRepositoryScoped(tx Queryable, organizationID int64) interfaces.DrawdownRepository {
	return &drawdownRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *drawdownRepository) Create(ctx context.Context, drawdown *entities.Drawdown) error {
	query := `
		INSERT INTO drawdowns (organization_id, contract_id, run_id, amount_cents, support_item_code, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		drawdown.ContractID,
		drawdown.RunID,
		drawdown.AmountCents,
		drawdown.SupportItemCode,
		drawdown.Note,
	).Scan(&drawdown.ID, &drawdown.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create drawdown: %w", err)
	}

	drawdown.OrganizationID = r.organizationID
	return nil
}

func (r *drawdownRepository) ListByContract(ctx context.Context, contractID int64, limit int) ([]*entities.Drawdown, error) {
	query := `
		SELECT id, organization_id, contract_id, run_id, amount_cents, support_item_code, note, created_at
		FROM drawdowns
		WHERE organization_id = $1 AND contract_id = $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.q.Query(ctx, query, r.organizationID, contractID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query drawdowns: %w", err)
	}
	defer rows.Close()

	var drawdowns []*entities.Drawdown
	for rows.Next() {
		var drawdown entities.Drawdown
		err := rows.Scan(
			&drawdown.ID,
			&drawdown.OrganizationID,
			&drawdown.ContractID,
			&drawdown.RunID,
			&drawdown.AmountCents,
			&drawdown.SupportItemCode,
			&drawdown.Note,
			&drawdown.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drawdown: %w", err)
		}
		drawdowns = append(drawdowns, &drawdown)
	}

	return drawdowns, nil
}

func (r *drawdownRepository) ListByRun(ctx context.Context, runID int64) ([]*entities.Drawdown, error) {
	query := `
		SELECT id, organization_id, contract_id, run_id, amount_cents, support_item_code, note, created_at
		FROM drawdowns
		WHERE organization_id = $1 AND run_id = $2
		ORDER BY id`

	rows, err := r.q.Query(ctx, query, r.organizationID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query drawdowns by run: %w", err)
	}
	defer rows.Close()

	var drawdowns []*entities.Drawdown
	for rows.Next() {
		var drawdown entities.Drawdown
		err := rows.Scan(
			&drawdown.ID,
			&drawdown.OrganizationID,
			&drawdown.ContractID,
			&drawdown.RunID,
			&drawdown.AmountCents,
			&drawdown.SupportItemCode,
			&drawdown.Note,
			&drawdown.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drawdown: %w", err)
		}
		drawdowns = append(drawdowns, &drawdown)
	}

	return drawdowns, nil
}
