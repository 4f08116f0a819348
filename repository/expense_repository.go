package repository

import (
	"context"
	"fmt"
	"time"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type expenseRepository struct {
	q              Queryable
	organizationID int64
}

// NewExpenseRepositoryScoped creates a new expense repository with a
// transaction and organization scope
func NewExpenseRepositoryScoped(tx Queryable, organizationID int64) interfaces.ExpenseRepository {
	return &expenseRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *expenseRepository) Create(ctx context.Context, expense *entities.Expense) error {
	query := `
		INSERT INTO expenses (organization_id, house_id, supplier_id, category, description, amount_cents, gst_cents, incurred_on, status, invoice_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	if expense.Category == "" {
		expense.Category = entities.ExpenseCategoryOther
	}
	if expense.Status == "" {
		expense.Status = entities.ExpenseStatusPending
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		expense.HouseID,
		expense.SupplierID,
		expense.Category,
		expense.Description,
		expense.AmountCents,
		expense.GSTCents,
		expense.IncurredOn,
		expense.Status,
		expense.InvoiceRef,
	).Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	expense.OrganizationID = r.organizationID
	return nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id int64) (*entities.Expense, error) {
	query := `
		SELECT id, organization_id, house_id, supplier_id, category, description, amount_cents, gst_cents, incurred_on, status, invoice_ref, created_at, updated_at
		FROM expenses
		WHERE id = $1 AND organization_id = $2`

	var expense entities.Expense
	err := r.q.QueryRow(ctx, query, id, r.organizationID).Scan(
		&expense.ID,
		&expense.OrganizationID,
		&expense.HouseID,
		&expense.SupplierID,
		&expense.Category,
		&expense.Description,
		&expense.AmountCents,
		&expense.GSTCents,
		&expense.IncurredOn,
		&expense.Status,
		&expense.InvoiceRef,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context) ([]*entities.Expense, error) {
	query := `
		SELECT id, organization_id, house_id, supplier_id, category, description, amount_cents, gst_cents, incurred_on, status, invoice_ref, created_at, updated_at
		FROM expenses
		WHERE organization_id = $1
		ORDER BY incurred_on DESC, id DESC`

	return r.queryExpenses(ctx, query, r.organizationID)
}

func (r *expenseRepository) ListByHouse(ctx context.Context, houseID int64, limit int) ([]*entities.Expense, error) {
	query := `
		SELECT id, organization_id, house_id, supplier_id, category, description, amount_cents, gst_cents, incurred_on, status, invoice_ref, created_at, updated_at
		FROM expenses
		WHERE organization_id = $1 AND house_id = $2
		ORDER BY incurred_on DESC, id DESC
		LIMIT $3`

	return r.queryExpenses(ctx, query, r.organizationID, houseID, limit)
}

func (r *expenseRepository) TotalByHouse(ctx context.Context, from, to time.Time) (map[int64]int64, error) {
	query := `
		SELECT house_id, COALESCE(SUM(amount_cents + gst_cents), 0)
		FROM expenses
		WHERE organization_id = $1 AND incurred_on >= $2 AND incurred_on <= $3
		GROUP BY house_id`

	rows, err := r.q.Query(ctx, query, r.organizationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]int64)
	for rows.Next() {
		var houseID, total int64
		if err := rows.Scan(&houseID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan expense total: %w", err)
		}
		totals[houseID] = total
	}

	return totals, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *entities.Expense) error {
	query := `
		UPDATE expenses
		SET house_id = $3, supplier_id = $4, category = $5, description = $6,
		    amount_cents = $7, gst_cents = $8, incurred_on = $9, status = $10,
		    invoice_ref = $11, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		expense.ID,
		r.organizationID,
		expense.HouseID,
		expense.SupplierID,
		expense.Category,
		expense.Description,
		expense.AmountCents,
		expense.GSTCents,
		expense.IncurredOn,
		expense.Status,
		expense.InvoiceRef,
	).Scan(&expense.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("expense %d not found", expense.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	return nil
}

func (r *expenseRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM expenses WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %d not found", id)
	}

	return nil
}

func (r *expenseRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]*entities.Expense, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entities.Expense
	for rows.Next() {
		var expense entities.Expense
		err := rows.Scan(
			&expense.ID,
			&expense.OrganizationID,
			&expense.HouseID,
			&expense.SupplierID,
			&expense.Category,
			&expense.Description,
			&expense.AmountCents,
			&expense.GSTCents,
			&expense.IncurredOn,
			&expense.Status,
			&expense.InvoiceRef,
			&expense.CreatedAt,
			&expense.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &expense)
	}

	return expenses, nil
}
