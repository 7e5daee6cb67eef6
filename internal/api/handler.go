// Package api provides the HTTP surface for the probity vendor risk
// assessment service.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/probity/internal/assessment"
	"github.com/theopenlane/probity/internal/types"
)

// Assessor runs vendor assessments for the API layer
type Assessor interface {
	// AssessVendor runs the full assessment pipeline for one vendor domain
	AssessVendor(ctx context.Context, vendorDomain string, criteria types.RiskCriteria) (*types.AssessmentResult, error)
}

// Handler manages API endpoints
type Handler struct {
	assessor    Assessor
	maxBodySize int64
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth returns service health status
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "probity",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// AssessRequest represents a vendor assessment request
type AssessRequest struct {
	// Domain is the vendor domain to assess directly
	Domain string `json:"domain,omitempty"`
	// Email is a vendor contact address to extract the domain from
	Email string `json:"email,omitempty"`
	// Criteria optionally tailors the risk profile; unset fields get defaults
	Criteria *types.RiskCriteria `json:"criteria,omitempty"`
}

// AssessResponse is the API response envelope for vendor assessments
type AssessResponse struct {
	// Success indicates whether the assessment completed successfully
	Success bool `json:"success"`
	// Data holds the assessment result when successful
	Data *types.AssessmentResult `json:"data,omitempty"`
	// Error is the normalized error payload when the assessment fails
	Error *Error `json:"error,omitempty"`
}

// handleAssess processes vendor assessment requests
func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	if h.assessor == nil {
		respondAssessError(w, http.StatusServiceUnavailable, errCodeUnavailable, ErrAssessorNotConfigured.Error())
		return
	}

	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req AssessRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondAssessError(w, http.StatusBadRequest, errCodeInvalidRequest, ErrInvalidRequestBody.Error())
		return
	}

	domain := req.Domain

	if domain == "" && req.Email != "" {
		extracted, err := extractEmailDomain(req.Email)
		if err != nil {
			respondAssessError(w, http.StatusBadRequest, errCodeValidation, err.Error())
			return
		}

		domain = extracted
	}

	if domain == "" {
		respondAssessError(w, http.StatusBadRequest, errCodeValidation, ErrDomainOrEmailRequired.Error())
		return
	}

	criteria := types.RiskCriteria{}
	if req.Criteria != nil {
		criteria = *req.Criteria
	}

	result, err := h.assessor.AssessVendor(r.Context(), domain, criteria)
	if err != nil {
		if errors.Is(err, assessment.ErrInvalidVendor) {
			respondAssessError(w, http.StatusBadRequest, errCodeValidation, err.Error())
			return
		}

		log.Error().Err(err).Str("domain", domain).Msg("vendor assessment failed")
		respondAssessError(w, http.StatusBadGateway, errCodeInternal, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, AssessResponse{
		Success: true,
		Data:    result,
	})
}

// extractEmailDomain pulls the domain portion out of an email address
func extractEmailDomain(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[1] == "" {
		return "", ErrInvalidEmailFormat
	}

	return parts[1], nil
}

func respondAssessError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, AssessResponse{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	})
}
