package api

import (
	"net/http"
	"strings"
	"time"

	"careops/domain/entities"
	"careops/domain/interfaces"
)

type createResidentRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	HouseID     *int64 `json:"house_id,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	NDISNumber  string `json:"ndis_number,omitempty"`
	MoveInDate  string `json:"move_in_date,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// updateResidentRequest patches a resident. HouseID moves the resident
// between houses; passing 0 vacates them.
type updateResidentRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	HouseID     *int64  `json:"house_id,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	NDISNumber  *string `json:"ndis_number,omitempty"`
	Status      *string `json:"status,omitempty"`
	MoveInDate  *string `json:"move_in_date,omitempty"`
	MoveOutDate *string `json:"move_out_date,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	residents, err := uow.ResidentRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, residents)
}

func (s *Server) handleCreateResident(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createResidentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" && strings.TrimSpace(req.LastName) == "" {
		writeError(w, http.StatusBadRequest, "a name is required")
		return
	}

	resident := &entities.Resident{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		HouseID:    req.HouseID,
		NDISNumber: strings.TrimSpace(req.NDISNumber),
		Notes:      req.Notes,
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
			return
		}
		resident.DateOfBirth = &dob
	}
	if req.MoveInDate != "" {
		moveIn, err := parseDate(req.MoveInDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid move_in_date, expected YYYY-MM-DD")
			return
		}
		resident.MoveInDate = &moveIn
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	if resident.HouseID != nil {
		if ok, err := s.houseExists(r, uow, *resident.HouseID); err != nil {
			s.internalError(w, r, err)
			return
		} else if !ok {
			writeError(w, http.StatusBadRequest, "house not found")
			return
		}
	}

	if err := uow.ResidentRepository().Create(r.Context(), resident); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, resident)
}

func (s *Server) handleGetResident(w http.ResponseWriter, r *http.Request) {
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

	resident, err := uow.ResidentRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusNotFound, "resident not found")
		return
	}

	writeData(w, http.StatusOK, resident)
}

func (s *Server) handleUpdateResident(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateResidentRequest
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

	resident, err := uow.ResidentRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusNotFound, "resident not found")
		return
	}

	if req.FirstName != nil {
		resident.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		resident.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.HouseID != nil {
		if *req.HouseID == 0 {
			resident.HouseID = nil
		} else {
			if ok, err := s.houseExists(r, uow, *req.HouseID); err != nil {
				s.internalError(w, r, err)
				return
			} else if !ok {
				writeError(w, http.StatusBadRequest, "house not found")
				return
			}
			resident.HouseID = req.HouseID
		}
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			resident.DateOfBirth = nil
		} else {
			dob, err := parseDate(*req.DateOfBirth)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
				return
			}
			resident.DateOfBirth = &dob
		}
	}
	if req.NDISNumber != nil {
		resident.NDISNumber = strings.TrimSpace(*req.NDISNumber)
	}
	if req.Status != nil {
		status := entities.ResidentStatus(*req.Status)
		switch status {
		case entities.ResidentStatusActive, entities.ResidentStatusInactive, entities.ResidentStatusDeparted:
			resident.Status = status
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if req.MoveInDate != nil {
		if err := setDateField(&resident.MoveInDate, *req.MoveInDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid move_in_date, expected YYYY-MM-DD")
			return
		}
	}
	if req.MoveOutDate != nil {
		if err := setDateField(&resident.MoveOutDate, *req.MoveOutDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid move_out_date, expected YYYY-MM-DD")
			return
		}
	}
	if req.Notes != nil {
		resident.Notes = *req.Notes
	}

	if resident.FirstName == "" && resident.LastName == "" {
		writeError(w, http.StatusBadRequest, "a name is required")
		return
	}

	if err := uow.ResidentRepository().Update(r.Context(), resident); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, resident)
}

func (s *Server) handleDeleteResident(w http.ResponseWriter, r *http.Request) {
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

	resident, err := uow.ResidentRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusNotFound, "resident not found")
		return
	}

	if err := uow.ResidentRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleListResidentContracts(w http.ResponseWriter, r *http.Request) {
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

	resident, err := uow.ResidentRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusNotFound, "resident not found")
		return
	}

	contracts, err := uow.FundingContractRepository().ListByResident(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, contracts)
}

// houseExists checks a house id belongs to the caller's organization
func (s *Server) houseExists(r *http.Request, uow interfaces.UnitOfWork, houseID int64) (bool, error) {
	house, err := uow.HouseRepository().GetByID(r.Context(), houseID)
	if err != nil {
		return false, err
	}
	return house != nil, nil
}

// setDateField assigns an optional date field from its string form; an
// empty string clears the field
func setDateField(dst **time.Time, raw string) error {
	if raw == "" {
		*dst = nil
		return nil
	}
	d, err := parseDate(raw)
	if err != nil {
		return err
	}
	*dst = &d
	return nil
}
