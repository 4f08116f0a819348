package api

import (
	"net/http"
	"strconv"
	"time"

	"careops/domain/services"
)

// handleBillingEligibility returns the derived eligibility view of funding
// contracts. Nothing is persisted; the same evaluator gates billing runs.
// Repeat contract_id to narrow the evaluation, omit it for the whole
// organization.
func (s *Server) handleBillingEligibility(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var contractIDs []int64
	for _, raw := range r.URL.Query()["contract_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid contract_id")
			return
		}
		contractIDs = append(contractIDs, id)
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	evaluator := services.NewEligibilityService(
		uow.FundingContractRepository(),
		uow.ResidentRepository(),
		uow.HouseRepository(),
	)
	today := time.Now().UTC()
	contracts, err := evaluator.EvaluateContracts(r.Context(), contractIDs, today)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"as_of":     today.Format("2006-01-02"),
		"contracts": contracts,
	})
}
