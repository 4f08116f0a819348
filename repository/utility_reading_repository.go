package repository

import (
	"context"
	"fmt"

	"careops/domain"
	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type utilityReadingRepository struct {
	q              Queryable
	organizationID int64
}

// NewUtilityReadingRepositoryScoped creates a new utility reading repository
// with a transaction and organization scope
func NewUtilityReadingRepositoryScoped(tx Queryable, organizationID int64) interfaces.UtilityReadingRepository {
	return &utilityReadingRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *utilityReadingRepository) Create(ctx context.Context, reading *entities.UtilityReading) error {
	query := `
		INSERT INTO utility_readings (organization_id, house_id, supplier_id, utility_type, reading, unit, read_at, cost_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		reading.HouseID,
		reading.SupplierID,
		reading.UtilityType,
		reading.Reading,
		reading.Unit,
		reading.ReadAt,
		reading.CostCents,
		reading.Notes,
	).Scan(&reading.ID, &reading.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create utility reading: %w", err)
	}

	reading.OrganizationID = r.organizationID
	return nil
}

func (r *utilityReadingRepository) ListByHouse(ctx context.Context, houseID int64, utilityType *entities.UtilityType, limit int) ([]*entities.UtilityReading, error) {
	query := `
		SELECT id, organization_id, house_id, supplier_id, utility_type, reading, unit, read_at, cost_cents, notes, created_at
		FROM utility_readings
		WHERE organization_id = $1 AND house_id = $2
		  AND ($3::text IS NULL OR utility_type = $3)
		ORDER BY read_at DESC
		LIMIT $4`

	rows, err := r.q.Query(ctx, query, r.organizationID, houseID, utilityType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query utility readings: %w", err)
	}
	defer rows.Close()

	var readings []*entities.UtilityReading
	for rows.Next() {
		var reading entities.UtilityReading
		err := rows.Scan(
			&reading.ID,
			&reading.OrganizationID,
			&reading.HouseID,
			&reading.SupplierID,
			&reading.UtilityType,
			&reading.Reading,
			&reading.Unit,
			&reading.ReadAt,
			&reading.CostCents,
			&reading.Notes,
			&reading.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan utility reading: %w", err)
		}
		readings = append(readings, &reading)
	}

	return readings, nil
}

func (r *utilityReadingRepository) GetLatest(ctx context.Context, houseID int64, utilityType entities.UtilityType) (*entities.UtilityReading, error) {
	query := `
		SELECT id, organization_id, house_id, supplier_id, utility_type, reading, unit, read_at, cost_cents, notes, created_at
		FROM utility_readings
		WHERE organization_id = $1 AND house_id = $2 AND utility_type = $3
		ORDER BY read_at DESC
		LIMIT 1`

	var reading entities.UtilityReading
	err := r.q.QueryRow(ctx, query, r.organizationID, houseID, utilityType).Scan(
		&reading.ID,
		&reading.OrganizationID,
		&reading.HouseID,
		&reading.SupplierID,
		&reading.UtilityType,
		&reading.Reading,
		&reading.Unit,
		&reading.ReadAt,
		&reading.CostCents,
		&reading.Notes,
		&reading.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest utility reading: %w", err)
	}

	return &reading, nil
}

func (r *utilityReadingRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM utility_readings WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete utility reading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("utility reading %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
