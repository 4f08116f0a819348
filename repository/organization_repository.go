package repository

import (
	"context"
	"fmt"

	"careops/database"
	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type organizationRepository struct {
	q Queryable
}

// NewOrganizationRepository creates a new organization repository.
// Organizations are the tenancy root, so this repository is never
// organization-scoped.
func NewOrganizationRepository(db *database.DB) interfaces.OrganizationRepository {
	return &organizationRepository{q: db.Pool}
}

// NewOrganizationRepositoryWithTx creates a new organization repository bound
// to a transaction
func NewOrganizationRepositoryWithTx(tx Queryable) interfaces.OrganizationRepository {
	return &organizationRepository{q: tx}
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*entities.Organization, error) {
	query := `
		SELECT id, name, contact_email, api_token_digest, created_at, updated_at
		FROM organizations
		WHERE id = $1`

	var org entities.Organization
	err := r.q.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.ContactEmail,
		&org.APITokenDigest,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

func (r *organizationRepository) GetByTokenDigest(ctx context.Context, digest string) (*entities.Organization, error) {
	query := `
		SELECT id, name, contact_email, api_token_digest, created_at, updated_at
		FROM organizations
		WHERE api_token_digest = $1`

	var org entities.Organization
	err := r.q.QueryRow(ctx, query, digest).Scan(
		&org.ID,
		&org.Name,
		&org.ContactEmail,
		&org.APITokenDigest,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization by token: %w", err)
	}

	return &org, nil
}

func (r *organizationRepository) Create(ctx context.Context, org *entities.Organization) error {
	query := `
		INSERT INTO organizations (name, contact_email, api_token_digest)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		org.Name,
		org.ContactEmail,
		org.APITokenDigest,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

func (r *organizationRepository) Update(ctx context.Context, org *entities.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, contact_email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		org.ID,
		org.Name,
		org.ContactEmail,
	).Scan(&org.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("organization %d not found", org.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return nil
}
