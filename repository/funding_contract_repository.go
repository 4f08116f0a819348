package repository

import (
	"context"
	"fmt"
	"time"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type fundingContractRepository struct {
	q              Queryable
	organizationID int64
}

// NewFundingContractRepositoryScoped creates a new funding contract
// repository with a transaction and organization scope
func NewFundingContractRepositoryScoped(tx Queryable, organizationID int64) interfaces.FundingContractRepository {
	return &fundingContractRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *fundingContractRepository) Create(ctx context.Context, contract *entities.FundingContract) error {
	query := `
		INSERT INTO funding_contracts (organization_id, resident_id, name, support_item_code, status, start_date, end_date, total_value_cents, balance_cents, drawdown_rate_cents, frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	if contract.Status == "" {
		contract.Status = entities.ContractStatusDraft
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		contract.ResidentID,
		contract.Name,
		contract.SupportItemCode,
		contract.Status,
		contract.StartDate,
		contract.EndDate,
		contract.TotalValueCents,
		contract.BalanceCents,
		contract.DrawdownRateCents,
		contract.Frequency,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create funding contract: %w", err)
	}

	contract.OrganizationID = r.organizationID
	return nil
}

func (r *fundingContractRepository) GetByID(ctx context.Context, id int64) (*entities.FundingContract, error) {
	query := `
		SELECT id, organization_id, resident_id, name, support_item_code, status, start_date, end_date, total_value_cents, balance_cents, drawdown_rate_cents, frequency, last_drawdown_at, created_at, updated_at
		FROM funding_contracts
		WHERE id = $1 AND organization_id = $2`

	var contract entities.FundingContract
	err := r.q.QueryRow(ctx, query, id, r.organizationID).Scan(
		&contract.ID,
		&contract.OrganizationID,
		&contract.ResidentID,
		&contract.Name,
		&contract.SupportItemCode,
		&contract.Status,
		&contract.StartDate,
		&contract.EndDate,
		&contract.TotalValueCents,
		&contract.BalanceCents,
		&contract.DrawdownRateCents,
		&contract.Frequency,
		&contract.LastDrawdownAt,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get funding contract: %w", err)
	}

	return &contract, nil
}

func (r *fundingContractRepository) List(ctx context.Context) ([]*entities.FundingContract, error) {
	query := `
		SELECT id, organization_id, resident_id, name, support_item_code, status, start_date, end_date, total_value_cents, balance_cents, drawdown_rate_cents, frequency, last_drawdown_at, created_at, updated_at
		FROM funding_contracts
		WHERE organization_id = $1
		ORDER BY id`

	rows, err := r.q.Query(ctx, query, r.organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query funding contracts: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

func (r *fundingContractRepository) ListByIDs(ctx context.Context, ids []int64) ([]*entities.FundingContract, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, organization_id, resident_id, name, support_item_code, status, start_date, end_date, total_value_cents, balance_cents, drawdown_rate_cents, frequency, last_drawdown_at, created_at, updated_at
		FROM funding_contracts
		WHERE organization_id = $1 AND id = ANY($2)
		ORDER BY id`

	rows, err := r.q.Query(ctx, query, r.organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query funding contracts by ids: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

func (r *fundingContractRepository) ListByResident(ctx context.Context, residentID int64) ([]*entities.FundingContract, error) {
	query := `
		SELECT id, organization_id, resident_id, name, support_item_code, status, start_date, end_date, total_value_cents, balance_cents, drawdown_rate_cents, frequency, last_drawdown_at, created_at, updated_at
		FROM funding_contracts
		WHERE organization_id = $1 AND resident_id = $2
		ORDER BY id`

	rows, err := r.q.Query(ctx, query, r.organizationID, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query funding contracts by resident: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

func (r *fundingContractRepository) Update(ctx context.Context, contract *entities.FundingContract) error {
	query := `
		UPDATE funding_contracts
		SET name = $3, support_item_code = $4, status = $5, start_date = $6, end_date = $7,
		    total_value_cents = $8, balance_cents = $9, drawdown_rate_cents = $10, frequency = $11,
		    updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		contract.ID,
		r.organizationID,
		contract.Name,
		contract.SupportItemCode,
		contract.Status,
		contract.StartDate,
		contract.EndDate,
		contract.TotalValueCents,
		contract.BalanceCents,
		contract.DrawdownRateCents,
		contract.Frequency,
	).Scan(&contract.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("funding contract %d not found", contract.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update funding contract: %w", err)
	}

	return nil
}

// ApplyDrawdown decrements the contract balance only when sufficient funds
// remain, so concurrent runs can never overdraw a contract.
func (r *fundingContractRepository) ApplyDrawdown(ctx context.Context, contractID int64, amountCents int64, at time.Time) (*entities.FundingContract, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("drawdown amount must be positive")
	}

	query := `
		UPDATE funding_contracts
		SET balance_cents = balance_cents - $3, last_drawdown_at = $4, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND balance_cents >= $3
		RETURNING id, organization_id, resident_id, name, support_item_code, status, start_date, end_date, total_value_cents, balance_cents, drawdown_rate_cents, frequency, last_drawdown_at, created_at, updated_at`

	var contract entities.FundingContract
	err := r.q.QueryRow(ctx, query, contractID, r.organizationID, amountCents, at).Scan(
		&contract.ID,
		&contract.OrganizationID,
		&contract.ResidentID,
		&contract.Name,
		&contract.SupportItemCode,
		&contract.Status,
		&contract.StartDate,
		&contract.EndDate,
		&contract.TotalValueCents,
		&contract.BalanceCents,
		&contract.DrawdownRateCents,
		&contract.Frequency,
		&contract.LastDrawdownAt,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("insufficient balance on contract %d for drawdown of %d cents", contractID, amountCents)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply drawdown to contract %d: %w", contractID, err)
	}

	return &contract, nil
}

func (r *fundingContractRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM funding_contracts WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete funding contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("funding contract %d not found", id)
	}

	return nil
}

func scanContracts(rows pgx.Rows) ([]*entities.FundingContract, error) {
	var contracts []*entities.FundingContract
	for rows.Next() {
		var contract entities.FundingContract
		err := rows.Scan(
			&contract.ID,
			&contract.OrganizationID,
			&contract.ResidentID,
			&contract.Name,
			&contract.SupportItemCode,
			&contract.Status,
			&contract.StartDate,
			&contract.EndDate,
			&contract.TotalValueCents,
			&contract.BalanceCents,
			&contract.DrawdownRateCents,
			&contract.Frequency,
			&contract.LastDrawdownAt,
			&contract.CreatedAt,
			&contract.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan funding contract: %w", err)
		}
		contracts = append(contracts, &contract)
	}

	return contracts, nil
}
