package repository

import (
	"context"
	"fmt"
	"time"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type headLeaseRepository struct {
	q              Queryable
	organizationID int64
}

// NewHeadLeaseRepositoryScoped creates a new head lease repository with a
// transaction and organization scope
func NewHeadLeaseRepositoryScoped(tx Queryable, organizationID int64) interfaces.HeadLeaseRepository {
	return &headLeaseRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *headLeaseRepository) Create(ctx context.Context, lease *entities.HeadLease) error {
	query := `
		INSERT INTO head_leases (organization_id, house_id, landlord_name, landlord_email, rent_cents, rent_frequency, bond_cents, start_date, end_date, status, agreement_ref, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	if lease.Status == "" {
		lease.Status = entities.HeadLeaseStatusActive
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		lease.HouseID,
		lease.LandlordName,
		lease.LandlordEmail,
		lease.RentCents,
		lease.RentFrequency,
		lease.BondCents,
		lease.StartDate,
		lease.EndDate,
		lease.Status,
		lease.AgreementRef,
		lease.Notes,
	).Scan(&lease.ID, &lease.CreatedAt, &lease.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create head lease: %w", err)
	}

	lease.OrganizationID = r.organizationID
	return nil
}

func (r *headLeaseRepository) GetByID(ctx context.Context, id int64) (*entities.HeadLease, error) {
	query := `
		SELECT id, organization_id, house_id, landlord_name, landlord_email, rent_cents, rent_frequency, bond_cents, start_date, end_date, status, agreement_ref, notes, created_at, updated_at
		FROM head_leases
		WHERE id = $1 AND organization_id = $2`

	lease, err := r.scanLease(r.q.QueryRow(ctx, query, id, r.organizationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get head lease: %w", err)
	}

	return lease, nil
}

func (r *headLeaseRepository) List(ctx context.Context) ([]*entities.HeadLease, error) {
	query := `
		SELECT id, organization_id, house_id, landlord_name, landlord_email, rent_cents, rent_frequency, bond_cents, start_date, end_date, status, agreement_ref, notes, created_at, updated_at
		FROM head_leases
		WHERE organization_id = $1
		ORDER BY id`

	return r.queryLeases(ctx, query, r.organizationID)
}

func (r *headLeaseRepository) GetByHouse(ctx context.Context, houseID int64) (*entities.HeadLease, error) {
	query := `
		SELECT id, organization_id, house_id, landlord_name, landlord_email, rent_cents, rent_frequency, bond_cents, start_date, end_date, status, agreement_ref, notes, created_at, updated_at
		FROM head_leases
		WHERE organization_id = $1 AND house_id = $2 AND status = 'active'`

	lease, err := r.scanLease(r.q.QueryRow(ctx, query, r.organizationID, houseID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get head lease for house %d: %w", houseID, err)
	}

	return lease, nil
}

func (r *headLeaseRepository) ListExpiring(ctx context.Context, now time.Time, window time.Duration) ([]*entities.HeadLease, error) {
	query := `
		SELECT id, organization_id, house_id, landlord_name, landlord_email, rent_cents, rent_frequency, bond_cents, start_date, end_date, status, agreement_ref, notes, created_at, updated_at
		FROM head_leases
		WHERE organization_id = $1 AND status = 'active'
		  AND end_date IS NOT NULL AND end_date >= $2 AND end_date <= $3
		ORDER BY end_date`

	return r.queryLeases(ctx, query, r.organizationID, now, now.Add(window))
}

func (r *headLeaseRepository) GetOrganizationsWithExpiringLeases(ctx context.Context, now time.Time, window time.Duration) ([]int64, error) {
	query := `
		SELECT DISTINCT organization_id
		FROM head_leases
		WHERE status = 'active'
		  AND end_date IS NOT NULL AND end_date >= $1 AND end_date <= $2`

	rows, err := r.q.Query(ctx, query, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations with expiring leases: %w", err)
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

func (r *headLeaseRepository) Update(ctx context.Context, lease *entities.HeadLease) error {
	query := `
		UPDATE head_leases
		SET house_id = $3, landlord_name = $4, landlord_email = $5, rent_cents = $6,
		    rent_frequency = $7, bond_cents = $8, start_date = $9, end_date = $10,
		    status = $11, agreement_ref = $12, notes = $13, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		lease.ID,
		r.organizationID,
		lease.HouseID,
		lease.LandlordName,
		lease.LandlordEmail,
		lease.RentCents,
		lease.RentFrequency,
		lease.BondCents,
		lease.StartDate,
		lease.EndDate,
		lease.Status,
		lease.AgreementRef,
		lease.Notes,
	).Scan(&lease.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("head lease %d not found", lease.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update head lease: %w", err)
	}

	return nil
}

func (r *headLeaseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM head_leases WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete head lease: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("head lease %d not found", id)
	}

	return nil
}

func (r *headLeaseRepository) scanLease(row pgx.Row) (*entities.HeadLease, error) {
	var lease entities.HeadLease
	err := row.Scan(
		&lease.ID,
		&lease.OrganizationID,
		&lease.HouseID,
		&lease.LandlordName,
		&lease.LandlordEmail,
		&lease.RentCents,
		&lease.RentFrequency,
		&lease.BondCents,
		&lease.StartDate,
		&lease.EndDate,
		&lease.Status,
		&lease.AgreementRef,
		&lease.Notes,
		&lease.CreatedAt,
		&lease.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *headLeaseRepository) queryLeases(ctx context.Context, query string, args ...any) ([]*entities.HeadLease, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query head leases: %w", err)
	}
	defer rows.Close()

	var leases []*entities.HeadLease
	for rows.Next() {
		lease, err := r.scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan head lease: %w", err)
		}
		leases = append(leases, lease)
	}

	return leases, nil
}
