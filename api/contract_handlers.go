package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"careops/domain/entities"
	"careops/domain/events"
)

type createContractRequest struct {
	ResidentID        int64  `json:"resident_id"`
	Name              string `json:"name"`
	SupportItemCode   string `json:"support_item_code"`
	Status            string `json:"status,omitempty"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date,omitempty"`
	TotalValueCents   int64  `json:"total_value_cents"`
	DrawdownRateCents int64  `json:"drawdown_rate_cents"`
	Frequency         string `json:"frequency"`
}

type updateContractRequest struct {
	Name              *string `json:"name,omitempty"`
	SupportItemCode   *string `json:"support_item_code,omitempty"`
	Status            *string `json:"status,omitempty"`
	EndDate           *string `json:"end_date,omitempty"`
	DrawdownRateCents *int64  `json:"drawdown_rate_cents,omitempty"`
	Frequency         *string `json:"frequency,omitempty"`
}

type createDrawdownRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note,omitempty"`
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	contracts, err := uow.FundingContractRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, contracts)
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createContractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ResidentID <= 0 {
		writeError(w, http.StatusBadRequest, "resident_id is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TotalValueCents <= 0 {
		writeError(w, http.StatusBadRequest, "total_value_cents must be positive")
		return
	}
	if req.DrawdownRateCents <= 0 {
		writeError(w, http.StatusBadRequest, "drawdown_rate_cents must be positive")
		return
	}
	frequency := entities.Frequency(req.Frequency)
	if !frequency.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid frequency")
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}

	status := entities.ContractStatusActive
	if req.Status != "" {
		status = entities.ContractStatus(req.Status)
		if status != entities.ContractStatusDraft && status != entities.ContractStatusActive {
			writeError(w, http.StatusBadRequest, "status must be draft or active")
			return
		}
	}

	contract := &entities.FundingContract{
		ResidentID:        req.ResidentID,
		Name:              strings.TrimSpace(req.Name),
		SupportItemCode:   strings.TrimSpace(req.SupportItemCode),
		Status:            status,
		StartDate:         startDate,
		TotalValueCents:   req.TotalValueCents,
		BalanceCents:      req.TotalValueCents,
		DrawdownRateCents: req.DrawdownRateCents,
		Frequency:         frequency,
	}
	if req.EndDate != "" {
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		if endDate.Before(startDate) {
			writeError(w, http.StatusBadRequest, "end_date must not precede start_date")
			return
		}
		contract.EndDate = &endDate
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	resident, err := uow.ResidentRepository().GetByID(r.Context(), req.ResidentID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusBadRequest, "resident not found")
		return
	}

	if err := uow.FundingContractRepository().Create(r.Context(), contract); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, contract)
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	contract, err := uow.FundingContractRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	writeData(w, http.StatusOK, contract)
}

func (s *Server) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateContractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	contract, err := uow.FundingContractRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	if req.Name != nil {
		contract.Name = strings.TrimSpace(*req.Name)
	}
	if req.SupportItemCode != nil {
		contract.SupportItemCode = strings.TrimSpace(*req.SupportItemCode)
	}
	if req.Status != nil {
		status := entities.ContractStatus(*req.Status)
		switch status {
		case entities.ContractStatusDraft, entities.ContractStatusActive,
			entities.ContractStatusExpired, entities.ContractStatusCancelled:
			contract.Status = status
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if req.EndDate != nil {
		if err := setDateField(&contract.EndDate, *req.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
	}
	if req.DrawdownRateCents != nil {
		if *req.DrawdownRateCents <= 0 {
			writeError(w, http.StatusBadRequest, "drawdown_rate_cents must be positive")
			return
		}
		contract.DrawdownRateCents = *req.DrawdownRateCents
	}
	if req.Frequency != nil {
		frequency := entities.Frequency(*req.Frequency)
		if !frequency.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid frequency")
			return
		}
		contract.Frequency = frequency
	}

	if contract.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := uow.FundingContractRepository().Update(r.Context(), contract); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, contract)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	contract, err := uow.FundingContractRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	if err := uow.FundingContractRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleListDrawdowns(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit <= 0 || limit > 500 {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	contract, err := uow.FundingContractRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	drawdowns, err := uow.DrawdownRepository().ListByContract(r.Context(), id, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, drawdowns)
}

// handleCreateDrawdown records a manual charge against a contract. The
// balance check and decrement happen in one conditional update, so two
// concurrent charges can never overdraw the contract.
func (s *Server) handleCreateDrawdown(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req createDrawdownRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	contract, err := uow.FundingContractRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	if req.AmountCents > contract.BalanceCents {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("amount exceeds remaining balance of %d cents", contract.BalanceCents))
		return
	}

	updated, err := uow.FundingContractRepository().ApplyDrawdown(r.Context(), id, req.AmountCents, time.Now().UTC())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	drawdown := &entities.Drawdown{
		ContractID:      id,
		AmountCents:     req.AmountCents,
		SupportItemCode: contract.SupportItemCode,
		Note:            req.Note,
	}
	if err := uow.DrawdownRepository().Create(r.Context(), drawdown); err != nil {
		s.internalError(w, r, err)
		return
	}

	if err := uow.EventBus().Publish(events.DrawdownRecordedEvent{
		ContractID:     id,
		OrganizationID: org.ID,
		AmountCents:    req.AmountCents,
		BalanceCents:   updated.BalanceCents,
	}); err != nil {
		s.internalError(w, r, err)
		return
	}

	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, map[string]any{
		"drawdown":      drawdown,
		"balance_cents": updated.BalanceCents,
	})
}
