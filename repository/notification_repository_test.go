package repository

import (
	"context"
	"testing"
	"time"

	"careops/domain/entities"
	"careops/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_CreateAndList(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("notification-create")
	require.NoError(t, orgRepo.Create(ctx, org))

	repo := NewNotificationRepositoryScoped(testDB.DB.Pool, org.ID)

	t.Run("create defaults to queued", func(t *testing.T) {
		notification := &entities.Notification{
			Kind:      entities.NotificationKindLeaseExpiring,
			Recipient: "ops@example.org",
			Subject:   "lease expiring soon",
			Body:      "the lease on Acacia House ends in 30 days",
		}

		err := repo.Create(ctx, notification)
		require.NoError(t, err)
		assert.NotZero(t, notification.ID)
		assert.Equal(t, entities.NotificationStatusQueued, notification.Status)
		assert.True(t, notification.IsPending())
	})

	t.Run("list pending returns oldest first", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			notification := testutil.CreateTestNotification(org.ID, entities.NotificationKindRunCompleted)
			require.NoError(t, repo.Create(ctx, notification))
			time.Sleep(time.Millisecond)
		}

		pending, err := repo.ListPending(ctx, 50)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(pending), 3)

		for i := 1; i < len(pending); i++ {
			assert.True(t, pending[i-1].CreatedAt.Before(pending[i].CreatedAt) ||
				pending[i-1].CreatedAt.Equal(pending[i].CreatedAt))
		}
	})
}

func TestNotificationRepository_MarkSent(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("notification-sent")
	require.NoError(t, orgRepo.Create(ctx, org))

	repo := NewNotificationRepositoryScoped(testDB.DB.Pool, org.ID)

	notification := testutil.CreateTestNotification(org.ID, entities.NotificationKindRunCompleted)
	require.NoError(t, repo.Create(ctx, notification))

	sentAt := time.Now()
	require.NoError(t, repo.MarkSent(ctx, notification.ID, sentAt))

	retrieved, err := repo.GetByID(ctx, notification.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.NotificationStatusSent, retrieved.Status)
	assert.Equal(t, 1, retrieved.Attempts)
	assert.Nil(t, retrieved.LastError)
	require.NotNil(t, retrieved.SentAt)
	assert.WithinDuration(t, sentAt, *retrieved.SentAt, time.Second)

	// Delivered notifications drop out of the pending queue
	pending, err := repo.ListPending(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, pending)

	t.Run("missing notification", func(t *testing.T) {
		err := repo.MarkSent(ctx, 99999, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestNotificationRepository_MarkFailed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("notification-failed")
	require.NoError(t, orgRepo.Create(ctx, org))

	repo := NewNotificationRepositoryScoped(testDB.DB.Pool, org.ID)

	notification := testutil.CreateTestNotification(org.ID, entities.NotificationKindRunFailed)
	require.NoError(t, repo.Create(ctx, notification))

	require.NoError(t, repo.MarkFailed(ctx, notification.ID, "smtp connection refused"))

	retrieved, err := repo.GetByID(ctx, notification.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.NotificationStatusFailed, retrieved.Status)
	assert.Equal(t, 1, retrieved.Attempts)
	require.NotNil(t, retrieved.LastError)
	assert.Equal(t, "smtp connection refused", *retrieved.LastError)
	assert.Nil(t, retrieved.SentAt)
}
