package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"careops/domain/entities"
	"careops/infrastructure/observability"
)

type ctxKeyRequestID struct{}
type ctxKeyOrganization struct{}

// RequestIDFromContext returns the request id attached by the middleware
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID{}).(string)
	return v, ok
}

// organizationFrom returns the authenticated organization for the request
func organizationFrom(ctx context.Context) (*entities.Organization, bool) {
	org, ok := ctx.Value(ctxKeyOrganization{}).(*entities.Organization)
	return org, ok
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = uuid.New().String()
		}

		r.Header.Set("X-Request-Id", id)
		w.Header().Set("X-Request-Id", id)
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id))
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		requestID, _ := RequestIDFromContext(r.Context())
		fields := log.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": duration.Milliseconds(),
		}

		if mp := observability.GetMetrics(); mp != nil {
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			mp.RecordHTTPRequest(r.Method, route, sw.status, duration)
		}

		if sw.status >= 500 {
			log.WithFields(fields).Error("HTTP request")
			return
		}
		log.WithFields(fields).Info("HTTP request")
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				requestID, _ := RequestIDFromContext(r.Context())
				log.WithFields(log.Fields{
					"request_id": requestID,
					"panic":      v,
					"path":       r.URL.Path,
				}).Error("Panic recovered in HTTP handler")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// hashToken derives the stored digest for an API token
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// authMiddleware resolves the calling organization from the bearer token.
// The response never distinguishes a missing account from a bad token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		org, err := s.lookupOrganization(r.Context(), hashToken(strings.TrimSpace(token)))
		if err != nil {
			requestID, _ := RequestIDFromContext(r.Context())
			log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err,
			}).Error("Failed to resolve organization")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if org == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyOrganization{}, org)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookupOrganization resolves a token digest inside a short read transaction
func (s *Server) lookupOrganization(ctx context.Context, digest string) (*entities.Organization, error) {
	uow := s.uowFactory.CreateForOrganization(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	return uow.OrganizationRepository().GetByTokenDigest(ctx, digest)
}
