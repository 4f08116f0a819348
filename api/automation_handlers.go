package api

import (
	"errors"
	"net/http"
	"time"

	"careops/domain"
	"careops/domain/entities"
	"careops/domain/interfaces"
	"careops/domain/services"
)

type createAutomationRequest struct {
	Name     string                    `json:"name"`
	Type     string                    `json:"type"`
	Enabled  *bool                     `json:"enabled,omitempty"`
	Schedule entities.Schedule         `json:"schedule"`
	Config   entities.AutomationConfig `json:"config"`
}

type updateAutomationRequest struct {
	Name     *string                    `json:"name,omitempty"`
	Enabled  *bool                      `json:"enabled,omitempty"`
	Schedule *entities.Schedule         `json:"schedule,omitempty"`
	Config   *entities.AutomationConfig `json:"config,omitempty"`
}

// runNowResponse is the terminal outcome of a manually triggered run. Success
// reflects the run status; item-level failures live in Metrics and Error.
type runNowResponse struct {
	RunID   int64               `json:"run_id"`
	Success bool                `json:"success"`
	Summary string              `json:"summary"`
	Metrics entities.RunMetrics `json:"metrics"`
	Error   *string             `json:"error,omitempty"`
}

// automationService builds the dispatcher for the caller's organization with
// every production runner registered.
func (s *Server) automationService(organizationID int64) interfaces.AutomationService {
	return services.NewAutomationService(
		s.uowFactory,
		organizationID,
		services.NewBillingRunner(s.uowFactory),
	)
}

func (s *Server) handleListAutomations(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	automations, err := uow.AutomationRepository().List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, automations)
}

func (s *Server) handleCreateAutomation(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())

	var req createAutomationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	automation := &entities.Automation{
		OrganizationID: org.ID,
		Name:           req.Name,
		Type:           entities.AutomationType(req.Type),
		Enabled:        enabled,
		Schedule:       req.Schedule,
		Config:         req.Config,
	}
	if err := automation.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if automation.Enabled {
		next, err := automation.Schedule.NextAfter(time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		automation.NextRunAt = &next
	}

	uow := s.uowFactory.CreateForOrganization(org.ID)
	if err := uow.Begin(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	defer uow.Rollback()

	if err := uow.AutomationRepository().Create(r.Context(), automation); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, automation)
}

func (s *Server) handleGetAutomation(w http.ResponseWriter, r *http.Request) {
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

	automation, err := uow.AutomationRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if automation == nil {
		writeError(w, http.StatusNotFound, "automation not found")
		return
	}
	writeData(w, http.StatusOK, automation)
}

func (s *Server) handleUpdateAutomation(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateAutomationRequest
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

	automation, err := uow.AutomationRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if automation == nil {
		writeError(w, http.StatusNotFound, "automation not found")
		return
	}

	wasEnabled := automation.Enabled
	if req.Name != nil {
		automation.Name = *req.Name
	}
	if req.Enabled != nil {
		automation.Enabled = *req.Enabled
	}
	if req.Schedule != nil {
		automation.Schedule = *req.Schedule
	}
	if req.Config != nil {
		automation.Config = *req.Config
	}
	if err := automation.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The next occurrence tracks the schedule: recompute on schedule change
	// or re-enable, clear on disable.
	switch {
	case !automation.Enabled:
		automation.NextRunAt = nil
	case req.Schedule != nil || !wasEnabled:
		next, err := automation.Schedule.NextAfter(time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		automation.NextRunAt = &next
	}

	if err := uow.AutomationRepository().Update(r.Context(), automation); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, automation)
}

func (s *Server) handleDeleteAutomation(w http.ResponseWriter, r *http.Request) {
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

	automation, err := uow.AutomationRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if automation == nil {
		writeError(w, http.StatusNotFound, "automation not found")
		return
	}
	if err := uow.AutomationRepository().Delete(r.Context(), id); err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListAutomationRuns(w http.ResponseWriter, r *http.Request) {
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

	automation, err := uow.AutomationRepository().GetByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if automation == nil {
		writeError(w, http.StatusNotFound, "automation not found")
		return
	}
	runs, err := uow.AutomationRunRepository().ListByAutomation(r.Context(), id, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, runs)
}

// handlePreflightRun answers "would a run start right now" without starting
// one. Always 200 for an existing automation; the verdict is in the body.
func (s *Server) handlePreflightRun(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	result, err := s.automationService(org.ID).Preflight(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "automation not found")
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// handleRunNow triggers an immediate run. Preflight rejections return 422
// without creating a run record; a started run always returns 200 with the
// terminal outcome, even when every item failed.
func (s *Server) handleRunNow(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	svc := s.automationService(org.ID)

	preflight, err := svc.Preflight(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "automation not found")
			return
		}
		s.internalError(w, r, err)
		return
	}
	if !preflight.CanRun {
		writeError(w, http.StatusUnprocessableEntity, preflight.Reason)
		return
	}

	run, err := svc.TriggerRun(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "automation not found")
		case errors.Is(err, domain.ErrAlreadyRunning):
			writeError(w, http.StatusConflict, "run already in progress")
		case errors.Is(err, domain.ErrNotRunnable):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeData(w, http.StatusOK, runNowResponse{
		RunID:   run.ID,
		Success: run.Status == entities.RunStatusSuccess,
		Summary: run.Summary,
		Metrics: run.Metrics,
		Error:   run.Error,
	})
}
