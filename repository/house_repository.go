package repository

import (
	"context"
	"fmt"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type houseRepository struct {
	q              Queryable
	organizationID int64
}

// NewHouseRepositoryScoped creates a new house repository with a transaction
// and organization scope
func NewHouseRepositoryScoped(tx Queryable, organizationID int64) interfaces.HouseRepository {
	return &houseRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *houseRepository) Create(ctx context.Context, house *entities.House) error {
	query := `
		INSERT INTO houses (organization_id, name, address_line, suburb, state, postcode, capacity, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	if house.Status == "" {
		house.Status = entities.HouseStatusActive
	}
	if house.Capacity <= 0 {
		house.Capacity = 1
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		house.Name,
		house.AddressLine,
		house.Suburb,
		house.State,
		house.Postcode,
		house.Capacity,
		house.Status,
		house.Notes,
	).Scan(&house.ID, &house.CreatedAt, &house.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create house: %w", err)
	}

	house.OrganizationID = r.organizationID
	return nil
}

func (r *houseRepository) GetByID(ctx context.Context, id int64) (*entities.House, error) {
	query := `
		SELECT id, organization_id, name, address_line, suburb, state, postcode, capacity, status, notes, created_at, updated_at
		FROM houses
		WHERE id = $1 AND organization_id = $2`

	var house entities.House
	err := r.q.QueryRow(ctx, query, id, r.organizationID).Scan(
		&house.ID,
		&house.OrganizationID,
		&house.Name,
		&house.AddressLine,
		&house.Suburb,
		&house.State,
		&house.Postcode,
		&house.Capacity,
		&house.Status,
		&house.Notes,
		&house.CreatedAt,
		&house.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get house: %w", err)
	}

	return &house, nil
}

func (r *houseRepository) List(ctx context.Context) ([]*entities.House, error) {
	query := `
		SELECT id, organization_id, name, address_line, suburb, state, postcode, capacity, status, notes, created_at, updated_at
		FROM houses
		WHERE organization_id = $1
		ORDER BY name`

	rows, err := r.q.Query(ctx, query, r.organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query houses: %w", err)
	}
	defer rows.Close()

	var houses []*entities.House
	for rows.Next() {
		var house entities.House
		err := rows.Scan(
			&house.ID,
			&house.OrganizationID,
			&house.Name,
			&house.AddressLine,
			&house.Suburb,
			&house.State,
			&house.Postcode,
			&house.Capacity,
			&house.Status,
			&house.Notes,
			&house.CreatedAt,
			&house.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan house: %w", err)
		}
		houses = append(houses, &house)
	}

	return houses, nil
}

func (r *houseRepository) Update(ctx context.Context, house *entities.House) error {
	query := `
		UPDATE houses
		SET name = $3, address_line = $4, suburb = $5, state = $6, postcode = $7,
		    capacity = $8, status = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		house.ID,
		r.organizationID,
		house.Name,
		house.AddressLine,
		house.Suburb,
		house.State,
		house.Postcode,
		house.Capacity,
		house.Status,
		house.Notes,
	).Scan(&house.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("house %d not found", house.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update house: %w", err)
	}

	return nil
}

func (r *houseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM houses WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete house: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("house %d not found", id)
	}

	return nil
}
