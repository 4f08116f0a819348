package api

import (
	"net/http"
)

// handleGetOrganization returns the organization resolved from the bearer
// token. The token digest is never serialized.
func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, _ := organizationFrom(r.Context())
	writeData(w, http.StatusOK, org)
}
