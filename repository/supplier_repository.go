package repository

import (
	"context"
	"fmt"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type supplierRepository struct {
	q              Queryable
	organizationID int64
}

// NewSupplierRepositoryScoped creates a new supplier repository with a
// transaction and organization scope
func NewSupplierRepositoryScoped(tx Queryable, organizationID int64) interfaces.SupplierRepository {
	return &supplierRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *entities.Supplier) error {
	query := `
		INSERT INTO suppliers (organization_id, name, category, abn, contact_name, contact_email, contact_phone, active, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	if supplier.Category == "" {
		supplier.Category = entities.SupplierCategoryOther
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		supplier.Name,
		supplier.Category,
		supplier.ABN,
		supplier.ContactName,
		supplier.ContactEmail,
		supplier.ContactPhone,
		supplier.Active,
		supplier.Notes,
	).Scan(&supplier.ID, &supplier.CreatedAt, &supplier.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	supplier.OrganizationID = r.organizationID
	return nil
}

func (r *supplierRepository) GetByID(ctx context.Context, id int64) (*entities.Supplier, error) {
	query := `
		SELECT id, organization_id, name, category, abn, contact_name, contact_email, contact_phone, active, notes, created_at, updated_at
		FROM suppliers
		WHERE id = $1 AND organization_id = $2`

	var supplier entities.Supplier
	err := r.q.QueryRow(ctx, query, id, r.organizationID).Scan(
		&supplier.ID,
		&supplier.OrganizationID,
		&supplier.Name,
		&supplier.Category,
		&supplier.ABN,
		&supplier.ContactName,
		&supplier.ContactEmail,
		&supplier.ContactPhone,
		&supplier.Active,
		&supplier.Notes,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*entities.Supplier, error) {
	query := `
		SELECT id, organization_id, name, category, abn, contact_name, contact_email, contact_phone, active, notes, created_at, updated_at
		FROM suppliers
		WHERE organization_id = $1
		ORDER BY name`

	rows, err := r.q.Query(ctx, query, r.organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*entities.Supplier
	for rows.Next() {
		var supplier entities.Supplier
		err := rows.Scan(
			&supplier.ID,
			&supplier.OrganizationID,
			&supplier.Name,
			&supplier.Category,
			&supplier.ABN,
			&supplier.ContactName,
			&supplier.ContactEmail,
			&supplier.ContactPhone,
			&supplier.Active,
			&supplier.Notes,
			&supplier.CreatedAt,
			&supplier.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, &supplier)
	}

	return suppliers, nil
}

func (r *supplierRepository) Update(ctx context.Context, supplier *entities.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $3, category = $4, abn = $5, contact_name = $6, contact_email = $7,
		    contact_phone = $8, active = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		supplier.ID,
		r.organizationID,
		supplier.Name,
		supplier.Category,
		supplier.ABN,
		supplier.ContactName,
		supplier.ContactEmail,
		supplier.ContactPhone,
		supplier.Active,
		supplier.Notes,
	).Scan(&supplier.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("supplier %d not found", supplier.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", err)
	}

	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM suppliers WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %d not found", id)
	}

	return nil
}
