package api

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"careops/domain/entities"
)

type createHouseRequest struct {
	Name        string `json:"name"`
	AddressLine string `json:"address_line"`
	Suburb      string `json:"suburb,omitempty"`
	State       string `json:"state,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type updateHouseRequest struct {
	Name        *string `json:"name,omitempty"`
	AddressLine *string `json:"address_line,omitempty"`
	Suburb      *string `json:"suburb,omitempty"`
	State       *string `json:"state,omitempty"`
	Postcode    *string `json:"postcode,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (s *Server) handleListHouses(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	houses, err := uow.HouseRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, houses)
}

func (s *Server) handleCreateHouse(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createHouseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(req.AddressLine) == "" {
		writeError(w, http.StatusBadRequest, "address_line is required")
		return
	}

	house := &entities.House{
		Name:        strings.TrimSpace(req.Name),
		AddressLine: strings.TrimSpace(req.AddressLine),
		Suburb:      strings.TrimSpace(req.Suburb),
		State:       strings.TrimSpace(req.State),
		Postcode:    strings.TrimSpace(req.Postcode),
		Capacity:    req.Capacity,
		Notes:       req.Notes,
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	if err := uow.HouseRepository().Create(r.Context(), house); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, house)
}

func (s *Server) handleGetHouse(w http.ResponseWriter, r *http.Request) {
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

	house, err := uow.HouseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if house == nil {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}

	writeData(w, http.StatusOK, house)
}

func (s *Server) handleUpdateHouse(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateHouseRequest
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

	house, err := uow.HouseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if house == nil {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}

	if req.Name != nil {
		house.Name = strings.TrimSpace(*req.Name)
	}
	if req.AddressLine != nil {
		house.AddressLine = strings.TrimSpace(*req.AddressLine)
	}
	if req.Suburb != nil {
		house.Suburb = strings.TrimSpace(*req.Suburb)
	}
	if req.State != nil {
		house.State = strings.TrimSpace(*req.State)
	}
	if req.Postcode != nil {
		house.Postcode = strings.TrimSpace(*req.Postcode)
	}
	if req.Capacity != nil {
		house.Capacity = *req.Capacity
	}
	if req.Status != nil {
		status := entities.HouseStatus(*req.Status)
		if status != entities.HouseStatusActive && status != entities.HouseStatusInactive {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		house.Status = status
	}
	if req.Notes != nil {
		house.Notes = *req.Notes
	}

	if house.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if house.Capacity <= 0 {
		writeError(w, http.StatusBadRequest, "capacity must be positive")
		return
	}

	if err := uow.HouseRepository().Update(r.Context(), house); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, house)
}

func (s *Server) handleDeleteHouse(w http.ResponseWriter, r *http.Request) {
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

	house, err := uow.HouseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if house == nil {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}

	if err := uow.HouseRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleListHouseResidents(w http.ResponseWriter, r *http.Request) {
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

	house, err := uow.HouseRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if house == nil {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}

	residents, err := uow.ResidentRepository().ListByHouse(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, residents)
}

// internalError logs the failure and responds with a generic 500
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	requestID, _ := RequestIDFromContext(r.Context())
	log.WithFields(log.Fields{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"error":      err,
	}).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
