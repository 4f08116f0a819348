package api

import (
	"net/http"
	"strings"

	"careops/domain/entities"
)

type createHeadLeaseRequest struct {
	HouseID       int64  `json:"house_id"`
	LandlordName  string `json:"landlord_name"`
	LandlordEmail string `json:"landlord_email,omitempty"`
	RentCents     int64  `json:"rent_cents"`
	RentFrequency string `json:"rent_frequency"`
	BondCents     int64  `json:"bond_cents,omitempty"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	AgreementRef  string `json:"agreement_ref,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type updateHeadLeaseRequest struct {
	LandlordName  *string `json:"landlord_name,omitempty"`
	LandlordEmail *string `json:"landlord_email,omitempty"`
	RentCents     *int64  `json:"rent_cents,omitempty"`
	RentFrequency *string `json:"rent_frequency,omitempty"`
	BondCents     *int64  `json:"bond_cents,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Status        *string `json:"status,omitempty"`
	AgreementRef  *string `json:"agreement_ref,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (s *Server) handleListHeadLeases(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	leases, err := uow.HeadLeaseRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, leases)
}

func (s *Server) handleCreateHeadLease(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createHeadLeaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.HouseID <= 0 {
		writeError(w, http.StatusBadRequest, "house_id is required")
		return
	}
	if strings.TrimSpace(req.LandlordName) == "" {
		writeError(w, http.StatusBadRequest, "landlord_name is required")
		return
	}
	if req.RentCents <= 0 {
		writeError(w, http.StatusBadRequest, "rent_cents must be positive")
		return
	}
	rentFrequency := entities.Frequency(req.RentFrequency)
	if !rentFrequency.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid rent_frequency")
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}

	lease := &entities.HeadLease{
		HouseID:       req.HouseID,
		LandlordName:  strings.TrimSpace(req.LandlordName),
		LandlordEmail: strings.TrimSpace(req.LandlordEmail),
		RentCents:     req.RentCents,
		RentFrequency: rentFrequency,
		BondCents:     req.BondCents,
		StartDate:     startDate,
		AgreementRef:  strings.TrimSpace(req.AgreementRef),
		Notes:         req.Notes,
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
		lease.EndDate = &endDate
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

	if err := uow.HeadLeaseRepository().Create(r.Context(), lease); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, lease)
}

func (s *Server) handleGetHeadLease(w http.ResponseWriter, r *http.Request) {
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

	lease, err := uow.HeadLeaseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if lease == nil {
		writeError(w, http.StatusNotFound, "head lease not found")
		return
	}

	writeData(w, http.StatusOK, lease)
}

func (s *Server) handleUpdateHeadLease(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateHeadLeaseRequest
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

	lease, err := uow.HeadLeaseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if lease == nil {
		writeError(w, http.StatusNotFound, "head lease not found")
		return
	}

	if req.LandlordName != nil {
		lease.LandlordName = strings.TrimSpace(*req.LandlordName)
	}
	if req.LandlordEmail != nil {
		lease.LandlordEmail = strings.TrimSpace(*req.LandlordEmail)
	}
	if req.RentCents != nil {
		if *req.RentCents <= 0 {
			writeError(w, http.StatusBadRequest, "rent_cents must be positive")
			return
		}
		lease.RentCents = *req.RentCents
	}
	if req.RentFrequency != nil {
		rentFrequency := entities.Frequency(*req.RentFrequency)
		if !rentFrequency.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid rent_frequency")
			return
		}
		lease.RentFrequency = rentFrequency
	}
	if req.BondCents != nil {
		lease.BondCents = *req.BondCents
	}
	if req.EndDate != nil {
		if err := setDateField(&lease.EndDate, *req.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
	}
	if req.Status != nil {
		status := entities.HeadLeaseStatus(*req.Status)
		switch status {
		case entities.HeadLeaseStatusActive, entities.HeadLeaseStatusExpired, entities.HeadLeaseStatusTerminated:
			lease.Status = status
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if req.AgreementRef != nil {
		lease.AgreementRef = strings.TrimSpace(*req.AgreementRef)
	}
	if req.Notes != nil {
		lease.Notes = *req.Notes
	}

	if lease.LandlordName == "" {
		writeError(w, http.StatusBadRequest, "landlord_name is required")
		return
	}

	if err := uow.HeadLeaseRepository().Update(r.Context(), lease); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, lease)
}

func (s *Server) handleDeleteHeadLease(w http.ResponseWriter, r *http.Request) {
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

	lease, err := uow.HeadLeaseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if lease == nil {
		writeError(w, http.StatusNotFound, "head lease not found")
		return
	}

	if err := uow.HeadLeaseRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}
