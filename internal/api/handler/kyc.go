// internal/api/handler/kyc.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/service"
	"finvest-api/internal/util"
)

// KycHandler handles HTTP requests for identity verification.
type KycHandler struct {
	service service.KycService
	logger  *slog.Logger
}

// NewKycHandler creates a new KycHandler.
func NewKycHandler(svc service.KycService, logger *slog.Logger) *KycHandler {
	return &KycHandler{service: svc, logger: logger}
}

type kycSubmitRequest struct {
	FullName       string `json:"full_name"`
	DocumentType   string `json:"document_type"`
	DocumentBase64 string `json:"document_base64"`
}

type kycStatusRequest struct {
	Status string `json:"status"`
}

// Submit files an identity document for review.
// POST /kyc
func (h *KycHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req kycSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	record, err := h.service.Submit(r.Context(), principal.UserID, req.FullName, req.DocumentType, req.DocumentBase64)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, record)
}

// SetStatus approves or rejects a submission. Admin only.
// PUT /kyc/{kycID}/status
func (h *KycHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "kycID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req kycStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var status domain.KycStatus
	switch strings.ToUpper(req.Status) {
	case string(domain.KycStatusApproved):
		status = domain.KycStatusApproved
	case string(domain.KycStatusRejected):
		status = domain.KycStatusRejected
	default:
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	record, err := h.service.SetStatus(r.Context(), id, status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, record)
}

// GetOwn returns the caller's verification record.
// GET /kyc/me
func (h *KycHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	record, err := h.service.GetOwn(r.Context(), principal.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, record)
}
