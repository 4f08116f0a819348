package api

import (
	"net/http"
	"strings"

	"careops/domain/entities"
)

type createExpenseRequest struct {
	HouseID     int64  `json:"house_id"`
	SupplierID  *int64 `json:"supplier_id,omitempty"`
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	GSTCents    int64  `json:"gst_cents,omitempty"`
	IncurredOn  string `json:"incurred_on"`
	InvoiceRef  string `json:"invoice_ref,omitempty"`
}

type updateExpenseRequest struct {
	SupplierID  *int64  `json:"supplier_id,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	GSTCents    *int64  `json:"gst_cents,omitempty"`
	IncurredOn  *string `json:"incurred_on,omitempty"`
	Status      *string `json:"status,omitempty"`
	InvoiceRef  *string `json:"invoice_ref,omitempty"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	expenses, err := uow.ExpenseRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.HouseID <= 0 {
		writeError(w, http.StatusBadRequest, "house_id is required")
		return
	}
	category := entities.ExpenseCategory(req.Category)
	if !category.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.AmountCents <= 0 {
		writeError(w, http.StatusBadRequest, "amount_cents must be positive")
		return
	}
	if req.GSTCents < 0 {
		writeError(w, http.StatusBadRequest, "gst_cents must not be negative")
		return
	}
	incurredOn, err := parseDate(req.IncurredOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid incurred_on, expected YYYY-MM-DD")
		return
	}

	expense := &entities.Expense{
		HouseID:     req.HouseID,
		SupplierID:  req.SupplierID,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		AmountCents: req.AmountCents,
		GSTCents:    req.GSTCents,
		IncurredOn:  incurredOn,
		InvoiceRef:  strings.TrimSpace(req.InvoiceRef),
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	if ok, err := s.houseExists(r, uow, req.HouseID); err != nil {
		s.internalError(w, r, err)
		return
	} else if !ok {
		writeError(w, http.StatusBadRequest, "house not found")
		return
	}
	if req.SupplierID != nil {
		supplier, err := uow.SupplierRepository().GetByID(r.Context(), *req.SupplierID)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		if supplier == nil {
			writeError(w, http.StatusBadRequest, "supplier not found")
			return
		}
	}

	if err := uow.ExpenseRepository().Create(r.Context(), expense); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, expense)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
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

	expense, err := uow.ExpenseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	writeData(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateExpenseRequest
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

	expense, err := uow.ExpenseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	if req.SupplierID != nil {
		if *req.SupplierID == 0 {
			expense.SupplierID = nil
		} else {
			supplier, err := uow.SupplierRepository().GetByID(r.Context(), *req.SupplierID)
			if err != nil {
				s.internalError(w, r, err)
				return
			}
			if supplier == nil {
				writeError(w, http.StatusBadRequest, "supplier not found")
				return
			}
			expense.SupplierID = req.SupplierID
		}
	}
	if req.Category != nil {
		category := entities.ExpenseCategory(*req.Category)
		if !category.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
		expense.Category = category
	}
	if req.Description != nil {
		expense.Description = strings.TrimSpace(*req.Description)
	}
	if req.AmountCents != nil {
		if *req.AmountCents <= 0 {
			writeError(w, http.StatusBadRequest, "amount_cents must be positive")
			return
		}
		expense.AmountCents = *req.AmountCents
	}
	if req.GSTCents != nil {
		if *req.GSTCents < 0 {
			writeError(w, http.StatusBadRequest, "gst_cents must not be negative")
			return
		}
		expense.GSTCents = *req.GSTCents
	}
	if req.IncurredOn != nil {
		incurredOn, err := parseDate(*req.IncurredOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid incurred_on, expected YYYY-MM-DD")
			return
		}
		expense.IncurredOn = incurredOn
	}
	if req.Status != nil {
		status := entities.ExpenseStatus(*req.Status)
		switch status {
		case entities.ExpenseStatusPending, entities.ExpenseStatusApproved,
			entities.ExpenseStatusPaid, entities.ExpenseStatusRejected:
			expense.Status = status
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if req.InvoiceRef != nil {
		expense.InvoiceRef = strings.TrimSpace(*req.InvoiceRef)
	}

	if expense.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	if err := uow.ExpenseRepository().Update(r.Context(), expense); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
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

	expense, err := uow.ExpenseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	if err := uow.ExpenseRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleListHouseExpenses(w http.ResponseWriter, r *http.Request) {
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

	house, err := uow.HouseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if house == nil {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}

	expenses, err := uow.ExpenseRepository().ListByHouse(r.Context(), id, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, expenses)
}

// handleExpenseTotals returns per-house expense totals over a date range
func (s *Server) handleExpenseTotals(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from, expected YYYY-MM-DD")
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to, expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	totals, err := uow.ExpenseRepository().TotalByHouse(r.Context(), from, to)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"from":            from.Format("2006-01-02"),
		"to":              to.Format("2006-01-02"),
		"totals_by_house": totals,
	})
}
