package services

import (
	"context"
	"fmt"
	"time"

	"careops/domain/entities"
	"careops/domain/interfaces"
)

type eligibilityService struct {
	contractRepo interfaces.FundingContractRepository
	residentRepo interfaces.ResidentRepository
	houseRepo    interfaces.HouseRepository
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(
	contractRepo interfaces.FundingContractRepository,
	residentRepo interfaces.ResidentRepository,
	houseRepo interfaces.HouseRepository,
) interfaces.EligibilityService {
	return &eligibilityService{
		contractRepo: contractRepo,
		residentRepo: residentRepo,
		houseRepo:    houseRepo,
	}
}

// EvaluateContracts derives the eligibility view for the targeted contracts.
// The evaluation is read-only; nothing about a contract changes until a
// billing run actually draws it down.
func (s *eligibilityService) EvaluateContracts(ctx context.Context, contractIDs []int64, today time.Time) ([]*entities.EligibleContract, error) {
	contracts, err := s.loadTargets(ctx, contractIDs)
	if err != nil {
		return nil, err
	}

	residents, houses, err := s.loadOccupancy(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*entities.EligibleContract, 0, len(contracts))
	for _, contract := range contracts {
		eligible, reason := contract.EligibleAt(today)

		view := &entities.EligibleContract{
			ContractID:      contract.ID,
			ResidentID:      contract.ResidentID,
			BalanceCents:    contract.BalanceCents,
			RunAmountCents:  contract.RunAmountCents(),
			NextRunDate:     contract.NextDrawdownDate(),
			Frequency:       contract.Frequency,
			SupportItemCode: contract.SupportItemCode,
			IsEligible:      eligible,
			Reason:          reason,
		}

		if resident, ok := residents[contract.ResidentID]; ok {
			view.ResidentName = resident.FullName()
			if resident.HouseID != nil {
				if house, ok := houses[*resident.HouseID]; ok {
					view.HouseAddress = house.FullAddress()
				}
			}
		}

		views = append(views, view)
	}

	return views, nil
}

// EligibleContracts narrows the target set to the contracts a billing run
// would charge right now
func (s *eligibilityService) EligibleContracts(ctx context.Context, contractIDs []int64, today time.Time) ([]*entities.FundingContract, error) {
	contracts, err := s.loadTargets(ctx, contractIDs)
	if err != nil {
		return nil, err
	}

	var eligible []*entities.FundingContract
	for _, contract := range contracts {
		if ok, _ := contract.EligibleAt(today); ok {
			eligible = append(eligible, contract)
		}
	}

	return eligible, nil
}

// loadTargets resolves the configured target set. An empty id list means
// every contract in the organization.
func (s *eligibilityService) loadTargets(ctx context.Context, contractIDs []int64) ([]*entities.FundingContract, error) {
	if len(contractIDs) == 0 {
		contracts, err := s.contractRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list contracts: %w", err)
		}
		return contracts, nil
	}

	contracts, err := s.contractRepo.ListByIDs(ctx, contractIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load targeted contracts: %w", err)
	}
	return contracts, nil
}

// loadOccupancy bulk-loads residents and houses so the eligibility view can
// name who a contract funds and where they live
func (s *eligibilityService) loadOccupancy(ctx context.Context) (map[int64]*entities.Resident, map[int64]*entities.House, error) {
	residentList, err := s.residentRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list residents: %w", err)
	}
	residents := make(map[int64]*entities.Resident, len(residentList))
	for _, resident := range residentList {
		residents[resident.ID] = resident
	}

	houseList, err := s.houseRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list houses: %w", err)
	}
	houses := make(map[int64]*entities.House, len(houseList))
	for _, house := range houseList {
		houses[house.ID] = house
	}

	return residents, houses, nil
}
