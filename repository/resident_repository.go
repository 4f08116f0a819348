package repository

import (
	"context"
	"fmt"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type residentRepository struct {
	q              Queryable
	organizationID int64
}

// NewResidentRepositoryScoped creates a new resident repository with a
// transaction and organization scope
func NewResidentRepositoryScoped(tx Queryable, organizationID int64) interfaces.ResidentRepository {
	return &residentRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *residentRepository) Create(ctx context.Context, resident *entities.Resident) error {
	query := `
		INSERT INTO residents (organization_id, house_id, first_name, last_name, date_of_birth, ndis_number, status, move_in_date, move_out_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	if resident.Status == "" {
		resident.Status = entities.ResidentStatusActive
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		resident.HouseID,
		resident.FirstName,
		resident.LastName,
		resident.DateOfBirth,
		resident.NDISNumber,
		resident.Status,
		resident.MoveInDate,
		resident.MoveOutDate,
		resident.Notes,
	).Scan(&resident.ID, &resident.CreatedAt, &resident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create resident: %w", err)
	}

	resident.OrganizationID = r.organizationID
	return nil
}

func (r *residentRepository) GetByID(ctx context.Context, id int64) (*entities.Resident, error) {
	query := `
		SELECT id, organization_id, house_id, first_name, last_name, date_of_birth, ndis_number, status, move_in_date, move_out_date, notes, created_at, updated_at
		FROM residents
		WHERE id = $1 AND organization_id = $2`

	var resident entities.Resident
	err := r.q.QueryRow(ctx, query, id, r.organizationID).Scan(
		&resident.ID,
		&resident.OrganizationID,
		&resident.HouseID,
		&resident.FirstName,
		&resident.LastName,
		&resident.DateOfBirth,
		&resident.NDISNumber,
		&resident.Status,
		&resident.MoveInDate,
		&resident.MoveOutDate,
		&resident.Notes,
		&resident.CreatedAt,
		&resident.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}

	return &resident, nil
}

func (r *residentRepository) List(ctx context.Context) ([]*entities.Resident, error) {
	query := `
		SELECT id, organization_id, house_id, first_name, last_name, date_of_birth, ndis_number, status, move_in_date, move_out_date, notes, created_at, updated_at
		FROM residents
		WHERE organization_id = $1
		ORDER BY last_name, first_name`

	rows, err := r.q.Query(ctx, query, r.organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query residents: %w", err)
	}
	defer rows.Close()

	var residents []*entities.Resident
	for rows.Next() {
		var resident entities.Resident
		err := rows.Scan(
			&resident.ID,
			&resident.OrganizationID,
			&resident.HouseID,
			&resident.FirstName,
			&resident.LastName,
			&resident.DateOfBirth,
			&resident.NDISNumber,
			&resident.Status,
			&resident.MoveInDate,
			&resident.MoveOutDate,
			&resident.Notes,
			&resident.CreatedAt,
			&resident.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		residents = append(residents, &resident)
	}

	return residents, nil
}

func (r *residentRepository) ListByHouse(ctx context.Context, houseID int64) ([]*entities.Resident, error) {
	query := `
		SELECT id, organization_id, house_id, first_name, last_name, date_of_birth, ndis_number, status, move_in_date, move_out_date, notes, created_at, updated_at
		FROM residents
		WHERE organization_id = $1 AND house_id = $2
		ORDER BY last_name, first_name`

	rows, err := r.q.Query(ctx, query, r.organizationID, houseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query residents by house: %w", err)
	}
	defer rows.Close()

	var residents []*entities.Resident
	for rows.Next() {
		var resident entities.Resident
		err := rows.Scan(
			&resident.ID,
			&resident.OrganizationID,
			&resident.HouseID,
			&resident.FirstName,
			&resident.LastName,
			&resident.DateOfBirth,
			&resident.NDISNumber,
			&resident.Status,
			&resident.MoveInDate,
			&resident.MoveOutDate,
			&resident.Notes,
			&resident.CreatedAt,
			&resident.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		residents = append(residents, &resident)
	}

	return residents, nil
}

func (r *residentRepository) Update(ctx context.Context, resident *entities.Resident) error {
	query := `
		UPDATE residents
		SET house_id = $3, first_name = $4, last_name = $5, date_of_birth = $6,
		    ndis_number = $7, status = $8, move_in_date = $9, move_out_date = $10,
		    notes = $11, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		resident.ID,
		r.organizationID,
		resident.HouseID,
		resident.FirstName,
		resident.LastName,
		resident.DateOfBirth,
		resident.NDISNumber,
		resident.Status,
		resident.MoveInDate,
		resident.MoveOutDate,
		resident.Notes,
	).Scan(&resident.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("resident %d not found", resident.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}

	return nil
}

func (r *residentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM residents WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete resident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resident %d not found", id)
	}

	return nil
}
