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

func TestFundingContractRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("contract-create")
	require.NoError(t, orgRepo.Create(ctx, org))

	residentRepo := NewResidentRepositoryScoped(testDB.DB.Pool, org.ID)
	resident := testutil.CreateTestResident(org.ID, "Mia", "Chen")
	require.NoError(t, residentRepo.Create(ctx, resident))

	repo := NewFundingContractRepositoryScoped(testDB.DB.Pool, org.ID)

	t.Run("create and read back", func(t *testing.T) {
		contract := testutil.CreateTestContract(org.ID, resident.ID)
		require.NoError(t, repo.Create(ctx, contract))
		assert.NotZero(t, contract.ID)

		retrieved, err := repo.GetByID(ctx, contract.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, resident.ID, retrieved.ResidentID)
		assert.Equal(t, entities.ContractStatusActive, retrieved.Status)
		assert.Equal(t, int64(5000000), retrieved.BalanceCents)
		assert.Equal(t, int64(150000), retrieved.DrawdownRateCents)
		assert.Equal(t, entities.FrequencyWeekly, retrieved.Frequency)
		assert.Nil(t, retrieved.LastDrawdownAt)
	})

	t.Run("missing contract returns nil", func(t *testing.T) {
		retrieved, err := repo.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("organization isolation", func(t *testing.T) {
		other := testutil.CreateTestOrganization("contract-create-other")
		require.NoError(t, orgRepo.Create(ctx, other))

		contract := testutil.CreateTestContract(org.ID, resident.ID)
		require.NoError(t, repo.Create(ctx, contract))

		otherRepo := NewFundingContractRepositoryScoped(testDB.DB.Pool, other.ID)
		retrieved, err := otherRepo.GetByID(ctx, contract.ID)
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestFundingContractRepository_ListByIDs(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("contract-list-ids")
	require.NoError(t, orgRepo.Create(ctx, org))

	residentRepo := NewResidentRepositoryScoped(testDB.DB.Pool, org.ID)
	resident := testutil.CreateTestResident(org.ID, "Sam", "Okafor")
	require.NoError(t, residentRepo.Create(ctx, resident))

	repo := NewFundingContractRepositoryScoped(testDB.DB.Pool, org.ID)

	first := testutil.CreateTestContract(org.ID, resident.ID)
	require.NoError(t, repo.Create(ctx, first))
	second := testutil.CreateTestContract(org.ID, resident.ID)
	require.NoError(t, repo.Create(ctx, second))
	third := testutil.CreateTestContract(org.ID, resident.ID)
	require.NoError(t, repo.Create(ctx, third))

	t.Run("subset of ids", func(t *testing.T) {
		contracts, err := repo.ListByIDs(ctx, []int64{first.ID, third.ID})
		require.NoError(t, err)
		require.Len(t, contracts, 2)
	})

	t.Run("unknown ids are silently skipped", func(t *testing.T) {
		contracts, err := repo.ListByIDs(ctx, []int64{first.ID, 999999})
		require.NoError(t, err)
		require.Len(t, contracts, 1)
		assert.Equal(t, first.ID, contracts[0].ID)
	})

	t.Run("empty id list returns nothing", func(t *testing.T) {
		contracts, err := repo.ListByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, contracts)
	})
}

func TestFundingContractRepository_ApplyDrawdown(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("contract-drawdown")
	require.NoError(t, orgRepo.Create(ctx, org))

	residentRepo := NewResidentRepositoryScoped(testDB.DB.Pool, org.ID)
	resident := testutil.CreateTestResident(org.ID, "Ivy", "Nguyen")
	require.NoError(t, residentRepo.Create(ctx, resident))

	repo := NewFundingContractRepositoryScoped(testDB.DB.Pool, org.ID)

	t.Run("drawdown decrements the balance", func(t *testing.T) {
		contract := testutil.CreateTestContractWithBalance(org.ID, resident.ID, 400000)
		require.NoError(t, repo.Create(ctx, contract))

		at := time.Now()
		updated, err := repo.ApplyDrawdown(ctx, contract.ID, 150000, at)
		require.NoError(t, err)
		assert.Equal(t, int64(250000), updated.BalanceCents)
		require.NotNil(t, updated.LastDrawdownAt)
		assert.WithinDuration(t, at, *updated.LastDrawdownAt, time.Second)
	})

	t.Run("drawdown can take the balance to exactly zero", func(t *testing.T) {
		contract := testutil.CreateTestContractWithBalance(org.ID, resident.ID, 150000)
		require.NoError(t, repo.Create(ctx, contract))

		updated, err := repo.ApplyDrawdown(ctx, contract.ID, 150000, time.Now())
		require.NoError(t, err)
		assert.Zero(t, updated.BalanceCents)
	})

	t.Run("insufficient balance is rejected", func(t *testing.T) {
		contract := testutil.CreateTestContractWithBalance(org.ID, resident.ID, 100000)
		require.NoError(t, repo.Create(ctx, contract))

		_, err := repo.ApplyDrawdown(ctx, contract.ID, 150000, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient balance")

		// Balance untouched by the failed attempt
		retrieved, err := repo.GetByID(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100000), retrieved.BalanceCents)
		assert.Nil(t, retrieved.LastDrawdownAt)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		contract := testutil.CreateTestContract(org.ID, resident.ID)
		require.NoError(t, repo.Create(ctx, contract))

		_, err := repo.ApplyDrawdown(ctx, contract.ID, 0, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})
}

func TestFundingContractRepository_ListByResident(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	orgRepo := NewOrganizationRepository(testDB.DB)
	org := testutil.CreateTestOrganization("contract-by-resident")
	require.NoError(t, orgRepo.Create(ctx, org))

	residentRepo := NewResidentRepositoryScoped(testDB.DB.Pool, org.ID)
	first := testutil.CreateTestResident(org.ID, "Ana", "Reyes")
	require.NoError(t, residentRepo.Create(ctx, first))
	second := testutil.CreateTestResident(org.ID, "Ben", "Walsh")
	require.NoError(t, residentRepo.Create(ctx, second))

	repo := NewFundingContractRepositoryScoped(testDB.DB.Pool, org.ID)

	for i := 0; i < 2; i++ {
		contract := testutil.CreateTestContract(org.ID, first.ID)
		require.NoError(t, repo.Create(ctx, contract))
	}
	contract := testutil.CreateTestContract(org.ID, second.ID)
	require.NoError(t, repo.Create(ctx, contract))

	contracts, err := repo.ListByResident(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, contracts, 2)
	for _, c := range contracts {
		assert.Equal(t, first.ID, c.ResidentID)
	}
}
