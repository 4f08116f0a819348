package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"careops/domain"
	"careops/domain/entities"
)

type createReadingRequest struct {
	SupplierID  *int64  `json:"supplier_id,omitempty"`
	UtilityType string  `json:"utility_type"`
	Reading     float64 `json:"reading"`
	Unit        string  `json:"unit"`
	ReadAt      string  `json:"read_at,omitempty"`
	CostCents   *int64  `json:"cost_cents,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

func (s *Server) handleListHouseReadings(w http.ResponseWriter, r *http.Request) {
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

	var utilityType *entities.UtilityType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t := entities.UtilityType(raw)
		if !t.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid type")
			return
		}
		utilityType = &t
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

	readings, err := uow.UtilityReadingRepository().ListByHouse(r.Context(), id, utilityType, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, readings)
}

func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req createReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	utilityType := entities.UtilityType(req.UtilityType)
	if !utilityType.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid utility_type")
		return
	}
	if req.Reading < 0 {
		writeError(w, http.StatusBadRequest, "reading must not be negative")
		return
	}
	if strings.TrimSpace(req.Unit) == "" {
		writeError(w, http.StatusBadRequest, "unit is required")
		return
	}
	if req.CostCents != nil && *req.CostCents < 0 {
		writeError(w, http.StatusBadRequest, "cost_cents must not be negative")
		return
	}

	readAt := time.Now().UTC()
	if req.ReadAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReadAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid read_at, expected RFC 3339")
			return
		}
		readAt = parsed.UTC()
	}

	reading := &entities.UtilityReading{
		HouseID:     id,
		SupplierID:  req.SupplierID,
		UtilityType: utilityType,
		Reading:     req.Reading,
		Unit:        strings.TrimSpace(req.Unit),
		ReadAt:      readAt,
		CostCents:   req.CostCents,
		Notes:       req.Notes,
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	if ok, err := s.houseExists(r, uow, id); err != nil {
		s.internalError(w, r, err)
		return
	} else if !ok {
		writeError(w, http.StatusNotFound, "house not found")
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

	if err := uow.UtilityReadingRepository().Create(r.Context(), reading); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, reading)
}

// handleLatestReading returns the most recent reading of one utility type,
// with the usage delta against the reading before it when available
func (s *Server) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	utilityType := entities.UtilityType(r.URL.Query().Get("type"))
	if !utilityType.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid type")
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

	latest, err := uow.UtilityReadingRepository().GetLatest(r.Context(), id, utilityType)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if latest == nil {
		writeError(w, http.StatusNotFound, "no readings recorded")
		return
	}

	recent, err := uow.UtilityReadingRepository().ListByHouse(r.Context(), id, &utilityType, 2)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	var usage float64
	if len(recent) == 2 {
		usage = latest.UsageSince(recent[1])
	}

	writeData(w, http.StatusOK, map[string]any{
		"reading": latest,
		"usage":   usage,
	})
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
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

	if err := uow.UtilityReadingRepository().Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "reading not found")
			return
		}
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}
