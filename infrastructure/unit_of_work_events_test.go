package infrastructure

import (
	"context"
	"testing"

	"careops/domain/events"
	"careops/repository"
	"careops/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive the real unit of work against Postgres through the test
// factory, asserting that buffered events follow the transaction outcome.

func TestTestUnitOfWorkFactory_CommitFlushesBufferedEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := repository.NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("uow-commit-events")
	require.NoError(t, orgRepo.Create(ctx, org))

	mockPublisher := &MockEventPublisher{}
	factory := NewTestUnitOfWorkFactory(testDB.DB, NewNATSTransactionalPublisher(mockPublisher))

	uow := factory.CreateForOrganization(org.ID)
	require.NoError(t, uow.Begin(ctx))

	house := testutil.CreateTestHouse(org.ID, "Acacia Street")
	require.NoError(t, uow.HouseRepository().Create(ctx, house))

	event := events.DrawdownRecordedEvent{
		ContractID:     1,
		OrganizationID: org.ID,
		AmountCents:    150000,
	}
	require.NoError(t, uow.EventBus().Publish(event))

	// Buffered while the transaction is open
	assert.Empty(t, mockPublisher.PublishedEvents)

	require.NoError(t, uow.Commit())

	// The write is visible and the event delivered exactly once
	require.Len(t, mockPublisher.PublishedEvents, 1)
	assert.Equal(t, event, mockPublisher.PublishedEvents[0])

	houseRepo := repository.NewHouseRepositoryScoped(testDB.DB.Pool, org.ID)
	retrieved, err := houseRepo.GetByID(ctx, house.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "Acacia Street", retrieved.Name)
}

func TestTestUnitOfWorkFactory_RollbackDiscardsBufferedEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := repository.NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("uow-rollback-events")
	require.NoError(t, orgRepo.Create(ctx, org))

	mockPublisher := &MockEventPublisher{}
	factory := NewTestUnitOfWorkFactory(testDB.DB, NewNATSTransactionalPublisher(mockPublisher))

	uow := factory.CreateForOrganization(org.ID)
	require.NoError(t, uow.Begin(ctx))

	house := testutil.CreateTestHouse(org.ID, "Banksia Court")
	require.NoError(t, uow.HouseRepository().Create(ctx, house))
	require.NoError(t, uow.EventBus().Publish(events.DrawdownRecordedEvent{
		ContractID:     1,
		OrganizationID: org.ID,
		AmountCents:    150000,
	}))

	require.NoError(t, uow.Rollback())

	// Neither the write nor the event survives the rollback
	assert.Empty(t, mockPublisher.PublishedEvents)

	houseRepo := repository.NewHouseRepositoryScoped(testDB.DB.Pool, org.ID)
	retrieved, err := houseRepo.GetByID(ctx, house.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)

	// A later unit of work on the same factory starts with a clean buffer
	second := factory.CreateForOrganization(org.ID)
	require.NoError(t, second.Begin(ctx))
	require.NoError(t, second.Commit())
	assert.Empty(t, mockPublisher.PublishedEvents)
}
