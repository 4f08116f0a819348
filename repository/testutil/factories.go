package testutil

import (
	"time"

	"careops/domain/entities"
)

// CreateTestOrganization creates a test organization with default values
func CreateTestOrganization(name string) *entities.Organization {
	now := time.Now()
	return &entities.Organization{
		Name:           name,
		ContactEmail:   "ops@example.org",
		APITokenDigest: "digest-" + name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestHouse creates a test house with default values
func CreateTestHouse(organizationID int64, name string) *entities.House {
	now := time.Now()
	return &entities.House{
		OrganizationID: organizationID,
		Name:           name,
		AddressLine:    "12 Acacia Street",
		Suburb:         "Parkside",
		State:          "SA",
		Postcode:       "5063",
		Capacity:       4,
		Status:         entities.HouseStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestResident creates a test resident with default values
func CreateTestResident(organizationID int64, firstName, lastName string) *entities.Resident {
	now := time.Now()
	return &entities.Resident{
		OrganizationID: organizationID,
		FirstName:      firstName,
		LastName:       lastName,
		NDISNumber:     "430000001",
		Status:         entities.ResidentStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestResidentInHouse creates a test resident placed in a specific house
func CreateTestResidentInHouse(organizationID, houseID int64, firstName, lastName string) *entities.Resident {
	resident := CreateTestResident(organizationID, firstName, lastName)
	resident.HouseID = &houseID
	moveIn := time.Now().AddDate(0, -6, 0)
	resident.MoveInDate = &moveIn
	return resident
}

// CreateTestContract creates an active test funding contract with default values.
// The start date is in the past so a never-billed contract is immediately due.
func CreateTestContract(organizationID, residentID int64) *entities.FundingContract {
	now := time.Now()
	return &entities.FundingContract{
		OrganizationID:    organizationID,
		ResidentID:        residentID,
		Name:              "SIL Core Supports",
		SupportItemCode:   "01_801_0115_1_1",
		Status:            entities.ContractStatusActive,
		StartDate:         now.AddDate(0, -1, 0),
		TotalValueCents:   5000000,
		BalanceCents:      5000000,
		DrawdownRateCents: 150000,
		Frequency:         entities.FrequencyWeekly,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CreateTestContractWithBalance creates a test contract with a specific balance
func CreateTestContractWithBalance(organizationID, residentID int64, balanceCents int64) *entities.FundingContract {
	contract := CreateTestContract(organizationID, residentID)
	contract.BalanceCents = balanceCents
	return contract
}

// CreateTestDrawdown creates a test drawdown against a contract
func CreateTestDrawdown(organizationID, contractID int64, amountCents int64) *entities.Drawdown {
	return &entities.Drawdown{
		OrganizationID:  organizationID,
		ContractID:      contractID,
		AmountCents:     amountCents,
		SupportItemCode: "01_801_0115_1_1",
		CreatedAt:       time.Now(),
	}
}

// CreateTestSupplier creates a test supplier with default values
func CreateTestSupplier(organizationID int64, name string) *entities.Supplier {
	now := time.Now()
	return &entities.Supplier{
		OrganizationID: organizationID,
		Name:           name,
		Category:       entities.SupplierCategoryUtility,
		ABN:            "51824753556",
		ContactEmail:   "accounts@example.com",
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestHeadLease creates an active test head lease for a house
func CreateTestHeadLease(organizationID, houseID int64) *entities.HeadLease {
	now := time.Now()
	end := now.AddDate(1, 0, 0)
	return &entities.HeadLease{
		OrganizationID: organizationID,
		HouseID:        houseID,
		LandlordName:   "Harbour Property Group",
		LandlordEmail:  "leasing@example.com",
		RentCents:      65000,
		RentFrequency:  entities.FrequencyWeekly,
		BondCents:      260000,
		StartDate:      now.AddDate(-1, 0, 0),
		EndDate:        &end,
		Status:         entities.HeadLeaseStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestHeadLeaseEndingAt creates a test head lease that ends at a specific time
func CreateTestHeadLeaseEndingAt(organizationID, houseID int64, endDate time.Time) *entities.HeadLease {
	lease := CreateTestHeadLease(organizationID, houseID)
	lease.EndDate = &endDate
	return lease
}

// CreateTestExpense creates a pending test expense against a house
func CreateTestExpense(organizationID, houseID int64, amountCents int64) *entities.Expense {
	now := time.Now()
	return &entities.Expense{
		OrganizationID: organizationID,
		HouseID:        houseID,
		Category:       entities.ExpenseCategoryMaintenance,
		Description:    "Gutter repair",
		AmountCents:    amountCents,
		GSTCents:       amountCents / 10,
		IncurredOn:     now.AddDate(0, 0, -3),
		Status:         entities.ExpenseStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestUtilityReading creates a test meter reading for a house
func CreateTestUtilityReading(organizationID, houseID int64, reading float64) *entities.UtilityReading {
	return &entities.UtilityReading{
		OrganizationID: organizationID,
		HouseID:        houseID,
		UtilityType:    entities.UtilityTypeElectricity,
		Reading:        reading,
		Unit:           "kWh",
		ReadAt:         time.Now(),
		CreatedAt:      time.Now(),
	}
}

// CreateTestAutomation creates an enabled billing automation with a weekly schedule
func CreateTestAutomation(organizationID int64, name string) *entities.Automation {
	now := time.Now()
	weekday := 1
	return &entities.Automation{
		OrganizationID: organizationID,
		Name:           name,
		Type:           entities.AutomationTypeBilling,
		Enabled:        true,
		Schedule: entities.Schedule{
			Kind:      entities.ScheduleKindFrequency,
			Frequency: entities.FrequencyWeekly,
			At:        "09:00",
			Weekday:   &weekday,
		},
		Config: entities.AutomationConfig{
			ContinueOnError: true,
			MaxRetries:      2,
			RetryDelayMs:    100,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAutomationDueAt creates a test automation already due at the given time
func CreateTestAutomationDueAt(organizationID int64, name string, dueAt time.Time) *entities.Automation {
	automation := CreateTestAutomation(organizationID, name)
	automation.NextRunAt = &dueAt
	return automation
}

// CreateTestAutomationRun creates a running test run for an automation
func CreateTestAutomationRun(organizationID, automationID int64) *entities.AutomationRun {
	return &entities.AutomationRun{
		AutomationID:   automationID,
		OrganizationID: organizationID,
		Status:         entities.RunStatusRunning,
		StartedAt:      time.Now(),
	}
}

// CreateTestNotification creates a queued test notification
func CreateTestNotification(organizationID int64, kind entities.NotificationKind) *entities.Notification {
	return &entities.Notification{
		OrganizationID: organizationID,
		Kind:           kind,
		Recipient:      "ops@example.org",
		Subject:        "test notification",
		Body:           "test body",
		Status:         entities.NotificationStatusQueued,
		CreatedAt:      time.Now(),
	}
}
