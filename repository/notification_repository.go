package repository

import (
	"context"
	"fmt"
	"time"

	"careops/domain/entities"
	"careops/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

type notificationRepository struct {
	q              Queryable
	organizationID int64
}

// NewNotificationRepositoryScoped creates a new notification repository with
// a transaction and organization scope
func NewNotificationRepositoryScoped(tx Queryable, organizationID int64) interfaces.NotificationRepository {
	return &notificationRepository{
		q:              tx,
		organizationID: organizationID,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entities.Notification) error {
	query := `
		INSERT INTO notifications (organization_id, kind, recipient, subject, body, status, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	if notification.Status == "" {
		notification.Status = entities.NotificationStatusQueued
	}

	err := r.q.QueryRow(ctx, query,
		r.organizationID,
		notification.Kind,
		notification.Recipient,
		notification.Subject,
		notification.Body,
		notification.Status,
		notification.RunID,
	).Scan(&notification.ID, &notification.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	notification.OrganizationID = r.organizationID
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*entities.Notification, error) {
	query := `
		SELECT id, organization_id, kind, recipient, subject, body, status, run_id, attempts, last_error, created_at, sent_at
		FROM notifications
		WHERE id = $1 AND organization_id = $2`

	notification, err := scanNotification(r.q.QueryRow(ctx, query, id, r.organizationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return notification, nil
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]*entities.Notification, error) {
	query := `
		SELECT id, organization_id, kind, recipient, subject, body, status, run_id, attempts, last_error, created_at, sent_at
		FROM notifications
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	return r.queryNotifications(ctx, query, r.organizationID, limit)
}

func (r *notificationRepository) ListPending(ctx context.Context, limit int) ([]*entities.Notification, error) {
	query := `
		SELECT id, organization_id, kind, recipient, subject, body, status, run_id, attempts, last_error, created_at, sent_at
		FROM notifications
		WHERE organization_id = $1 AND status = 'queued'
		ORDER BY created_at
		LIMIT $2`

	return r.queryNotifications(ctx, query, r.organizationID, limit)
}

func (r *notificationRepository) GetOrganizationsWithPendingNotifications(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT organization_id
		FROM notifications
		WHERE status = 'queued'`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations with pending notifications: %w", err)
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

func (r *notificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE notifications
		SET status = 'sent', sent_at = $3, attempts = attempts + 1, last_error = NULL
		WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d sent: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %d not found", id)
	}

	return nil
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id int64, deliveryErr string) error {
	query := `
		UPDATE notifications
		SET status = 'failed', attempts = attempts + 1, last_error = $3
		WHERE id = $1 AND organization_id = $2`

	tag, err := r.q.Exec(ctx, query, id, r.organizationID, deliveryErr)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d failed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %d not found", id)
	}

	return nil
}

func (r *notificationRepository) queryNotifications(ctx context.Context, query string, args ...any) ([]*entities.Notification, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entities.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

func scanNotification(row pgx.Row) (*entities.Notification, error) {
	var notification entities.Notification
	err := row.Scan(
		&notification.ID,
		&notification.OrganizationID,
		&notification.Kind,
		&notification.Recipient,
		&notification.Subject,
		&notification.Body,
		&notification.Status,
		&notification.RunID,
		&notification.Attempts,
		&notification.LastError,
		&notification.CreatedAt,
		&notification.SentAt,
	)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}
