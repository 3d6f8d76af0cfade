package handlers

import (
	"encoding/json"
	"net/http"

	apiContext "donorly/internal/api/context"
	"donorly/internal/engine/receipts"
	"donorly/internal/pkg/errors"
	"donorly/internal/platform/auth"
	"donorly/internal/platform/models"
	"donorly/internal/platform/repositories"
)

type OrgHandler struct {
	orgRepo    *repositories.OrganizationRepository
	receiptSvc *receipts.Service
}

func NewOrgHandler(orgRepo *repositories.OrganizationRepository, receiptSvc *receipts.Service) *OrgHandler {
	return &OrgHandler{
		orgRepo:    orgRepo,
		receiptSvc: receiptSvc,
	}
}

type OrgResponse struct {
	Organization *models.Organization `json:"organization"`
	Receipts     *receipts.Sequence   `json:"receipts"`
}

func (h *OrgHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	org, err := h.orgRepo.GetByID(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	seq, err := h.receiptSvc.Settings(org.ID)
	if err != nil && err != receipts.ErrNotFound {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load receipt settings", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OrgResponse{Organization: org, Receipts: seq})
}

type UpdateOrgRequest struct {
	Name          string `json:"name"`
	ContactEmail  string `json:"contact_email"`
	TaxExemptID   string `json:"tax_exempt_id"`
	ReceiptPrefix string `json:"receipt_prefix"`
	ReceiptFormat string `json:"receipt_format"`
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req UpdateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.orgRepo.GetByID(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	if req.Name != "" {
		org.Name = req.Name
	}
	if req.ContactEmail != "" {
		org.ContactEmail = req.ContactEmail
	}
	if req.TaxExemptID != "" {
		org.TaxExemptID = req.TaxExemptID
	}

	if err := h.orgRepo.Update(org); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update organization", nil)
		return
	}

	if req.ReceiptPrefix != "" || req.ReceiptFormat != "" {
		if err := h.receiptSvc.UpdateSettings(org.ID, req.ReceiptPrefix, req.ReceiptFormat); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update receipt settings", nil)
			return
		}
	}

	seq, err := h.receiptSvc.Settings(org.ID)
	if err != nil && err != receipts.ErrNotFound {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load receipt settings", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OrgResponse{Organization: org, Receipts: seq})
}
