package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"careops/config"
	"careops/database"
	"careops/domain/interfaces"
	"careops/infrastructure"
)

// Server is the REST boundary of the service. Every /api route is
// authenticated and scoped to the calling organization.
type Server struct {
	cfg        *config.Config
	db         *database.DB
	natsClient *infrastructure.NATSClient
	uowFactory interfaces.UnitOfWorkFactory
	httpServer *http.Server
}

// NewServer creates the HTTP server
func NewServer(cfg *config.Config, db *database.DB, natsClient *infrastructure.NATSClient, uowFactory interfaces.UnitOfWorkFactory) *Server {
	return &Server{
		cfg:        cfg,
		db:         db,
		natsClient: natsClient,
		uowFactory: uowFactory,
	}
}

// Handler assembles the full route table and middleware chain
func (s *Server) Handler() http.Handler {
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("GET /api/organization", s.handleGetOrganization)

	apiMux.HandleFunc("GET /api/houses", s.handleListHouses)
	apiMux.HandleFunc("POST /api/houses", s.handleCreateHouse)
	apiMux.HandleFunc("GET /api/houses/{id}", s.handleGetHouse)
	apiMux.HandleFunc("PATCH /api/houses/{id}", s.handleUpdateHouse)
	apiMux.HandleFunc("DELETE /api/houses/{id}", s.handleDeleteHouse)
	apiMux.HandleFunc("GET /api/houses/{id}/residents", s.handleListHouseResidents)
	apiMux.HandleFunc("GET /api/houses/{id}/expenses", s.handleListHouseExpenses)
	apiMux.HandleFunc("GET /api/houses/{id}/utility-readings", s.handleListHouseReadings)
	apiMux.HandleFunc("POST /api/houses/{id}/utility-readings", s.handleCreateReading)
	apiMux.HandleFunc("GET /api/houses/{id}/utility-readings/latest", s.handleLatestReading)

	apiMux.HandleFunc("GET /api/residents", s.handleListResidents)
	apiMux.HandleFunc("POST /api/residents", s.handleCreateResident)
	apiMux.HandleFunc("GET /api/residents/{id}", s.handleGetResident)
	apiMux.HandleFunc("PATCH /api/residents/{id}", s.handleUpdateResident)
	apiMux.HandleFunc("DELETE /api/residents/{id}", s.handleDeleteResident)
	apiMux.HandleFunc("GET /api/residents/{id}/contracts", s.handleListResidentContracts)

	apiMux.HandleFunc("GET /api/contracts", s.handleListContracts)
	apiMux.HandleFunc("POST /api/contracts", s.handleCreateContract)
	apiMux.HandleFunc("GET /api/contracts/{id}", s.handleGetContract)
	apiMux.HandleFunc("PATCH /api/contracts/{id}", s.handleUpdateContract)
	apiMux.HandleFunc("DELETE /api/contracts/{id}", s.handleDeleteContract)
	apiMux.HandleFunc("GET /api/contracts/{id}/drawdowns", s.handleListDrawdowns)
	apiMux.HandleFunc("POST /api/contracts/{id}/drawdowns", s.handleCreateDrawdown)

	apiMux.HandleFunc("GET /api/suppliers", s.handleListSuppliers)
	apiMux.HandleFunc("POST /api/suppliers", s.handleCreateSupplier)
	apiMux.HandleFunc("GET /api/suppliers/{id}", s.handleGetSupplier)
	apiMux.HandleFunc("PATCH /api/suppliers/{id}", s.handleUpdateSupplier)
	apiMux.HandleFunc("DELETE /api/suppliers/{id}", s.handleDeleteSupplier)

	apiMux.HandleFunc("GET /api/head-leases", s.handleListHeadLeases)
	apiMux.HandleFunc("POST /api/head-leases", s.handleCreateHeadLease)
	apiMux.HandleFunc("GET /api/head-leases/{id}", s.handleGetHeadLease)
	apiMux.HandleFunc("PATCH /api/head-leases/{id}", s.handleUpdateHeadLease)
	apiMux.HandleFunc("DELETE /api/head-leases/{id}", s.handleDeleteHeadLease)

	apiMux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	apiMux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	apiMux.HandleFunc("GET /api/expenses/totals", s.handleExpenseTotals)
	apiMux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	apiMux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	apiMux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	apiMux.HandleFunc("DELETE /api/utility-readings/{id}", s.handleDeleteReading)

	apiMux.HandleFunc("GET /api/automations", s.handleListAutomations)
	apiMux.HandleFunc("POST /api/automations", s.handleCreateAutomation)
	apiMux.HandleFunc("GET /api/automations/{id}", s.handleGetAutomation)
	apiMux.HandleFunc("PATCH /api/automations/{id}", s.handleUpdateAutomation)
	apiMux.HandleFunc("DELETE /api/automations/{id}", s.handleDeleteAutomation)
	apiMux.HandleFunc("GET /api/automations/{id}/runs", s.handleListAutomationRuns)
	apiMux.HandleFunc("GET /api/automations/{id}/run-now", s.handlePreflightRun)
	apiMux.HandleFunc("POST /api/automations/{id}/run-now", s.handleRunNow)

	apiMux.HandleFunc("GET /api/billing/eligibility", s.handleBillingEligibility)

	apiMux.HandleFunc("GET /api/notifications", s.handleListNotifications)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("/api/", s.authMiddleware(apiMux))

	return recoverMiddleware(requestIDMiddleware(requestLogMiddleware(mux)))
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.HTTPAddr).Info("HTTP server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("HTTP server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "careops",
		"status":  "ok",
	})
}

type readinessCheck struct {
	Name  string
	Check func(context.Context) error
}

func (s *Server) readinessChecks() []readinessCheck {
	checks := []readinessCheck{
		{
			Name: "postgres",
			Check: func(ctx context.Context) error {
				return s.db.Ping(ctx)
			},
		},
	}
	if s.natsClient != nil {
		checks = append(checks, readinessCheck{
			Name: "nats",
			Check: func(ctx context.Context) error {
				if !s.natsClient.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			},
		})
	}
	return checks
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	type checkResult struct {
		Name       string `json:"name"`
		Status     string `json:"status"`
		DurationMs int64  `json:"duration_ms"`
		Error      string `json:"error,omitempty"`
	}

	checks := s.readinessChecks()
	results := make([]checkResult, 0, len(checks))
	overallOK := true

	for _, check := range checks {
		start := time.Now()
		err := check.Check(r.Context())
		status := "ok"
		var errMsg string
		if err != nil {
			overallOK = false
			status = "fail"
			errMsg = err.Error()
		}
		results = append(results, checkResult{
			Name:       check.Name,
			Status:     status,
			DurationMs: time.Since(start).Milliseconds(),
			Error:      errMsg,
		})
	}

	status := http.StatusOK
	state := "ready"
	if !overallOK {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{
		"service": "careops",
		"status":  state,
		"checks":  results,
	})
}
