package api

import (
	"net/http"
	"strings"

	"careops/domain/entities"
)

type createSupplierRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	ABN          string `json:"abn,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type updateSupplierRequest struct {
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	ABN          *string `json:"abn,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	suppliers, err := uow.SupplierRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, suppliers)
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createSupplierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	category := entities.SupplierCategory(req.Category)
	if !category.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	supplier := &entities.Supplier{
		Name:         strings.TrimSpace(req.Name),
		Category:     category,
		ABN:          strings.TrimSpace(req.ABN),
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
		Active:       true,
		Notes:        req.Notes,
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	if err := uow.SupplierRepository().Create(r.Context(), supplier); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, supplier)
}

func (s *Server) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
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

	supplier, err := uow.SupplierRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if supplier == nil {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}

	writeData(w, http.StatusOK, supplier)
}

func (s *Server) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateSupplierRequest
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

	supplier, err := uow.SupplierRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if supplier == nil {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}

	if req.Name != nil {
		supplier.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		category := entities.SupplierCategory(*req.Category)
		if !category.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
		supplier.Category = category
	}
	if req.ABN != nil {
		supplier.ABN = strings.TrimSpace(*req.ABN)
	}
	if req.ContactName != nil {
		supplier.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.ContactEmail != nil {
		supplier.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.ContactPhone != nil {
		supplier.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.Active != nil {
		supplier.Active = *req.Active
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}

	if supplier.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := uow.SupplierRepository().Update(r.Context(), supplier); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, supplier)
}

func (s *Server) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
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

	supplier, err := uow.SupplierRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if supplier == nil {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}

	if err := uow.SupplierRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}
