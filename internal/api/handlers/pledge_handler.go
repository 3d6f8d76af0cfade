package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "donorly/internal/api/context"
	"donorly/internal/engine/donations"
	"donorly/internal/engine/pledges"
	"donorly/internal/engine/receipts"
	apiErrors "donorly/internal/pkg/errors"
	"donorly/internal/platform/audit"
	"donorly/internal/platform/database"
)

type PledgeHandler struct {
	receiptSvc *receipts.Service
	audit      *audit.Logger
}

func NewPledgeHandler(receiptSvc *receipts.Service, auditLogger *audit.Logger) *PledgeHandler {
	return &PledgeHandler{
		receiptSvc: receiptSvc,
		audit:      auditLogger,
	}
}

func (h *PledgeHandler) lifecycle(tenant *database.TenantContext) *pledges.Service {
	return pledges.NewService(donations.NewRepository(tenant.DB))
}

func (h *PledgeHandler) transition(w http.ResponseWriter, r *http.Request, target donations.Status, action string) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("pledge_id")

	pledge, err := h.lifecycle(tenant).Transition(tenant.OrgID, id, target)
	switch {
	case err == nil:
	case err == donations.ErrNotFound:
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeNotFound, "Pledge not found", nil)
		return
	case err == donations.ErrConflict:
		apiErrors.WriteError(w, http.StatusConflict, apiErrors.ErrCodeConflict, "Concurrent modification detected, retry the request", nil)
		return
	case errors.Is(err, pledges.ErrInvalidTransition), err == donations.ErrNotAPledge:
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidInput, err.Error(), nil)
		return
	default:
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, err.Error(), nil)
		return
	}

	h.audit.Log(r.Context(), action, "pledge", id, map[string]interface{}{
		"status": string(pledge.Status),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pledge)
}

func (h *PledgeHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, donations.StatusPaused, "pledge.paused")
}

func (h *PledgeHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, donations.StatusActive, "pledge.resumed")
}

func (h *PledgeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, donations.StatusCancelled, "pledge.cancelled")
}

type BulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Target string   `json:"target"`
}

// BulkStatus applies a status change to many pledges, reporting a per-id
// outcome list rather than a single boolean, so partial failure is visible.
func (h *PledgeHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)

	var req BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if len(req.IDs) == 0 {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidInput, "ids is required", nil)
		return
	}

	target := donations.Status(req.Target)
	switch target {
	case donations.StatusActive, donations.StatusPaused, donations.StatusCancelled:
	default:
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidInput, "target must be Active, Paused or Cancelled", nil)
		return
	}

	result := h.lifecycle(tenant).BulkTransition(tenant.OrgID, req.IDs, target)

	h.audit.Log(r.Context(), "pledge.bulk_status", "pledge", "", map[string]interface{}{
		"target":        req.Target,
		"count":         len(req.IDs),
		"all_succeeded": result.AllSucceeded,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Payments lists the payments recorded against a pledge, oldest first.
func (h *PledgeHandler) Payments(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("pledge_id")

	repo := donations.NewRepository(tenant.DB)
	pledge, err := repo.GetByID(tenant.OrgID, id)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, err.Error(), nil)
		return
	}
	if pledge == nil {
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeNotFound, "Pledge not found", nil)
		return
	}
	if !pledge.IsPledge() {
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidInput, donations.ErrNotAPledge.Error(), nil)
		return
	}

	payments, err := repo.ListPaymentsForPledge(tenant.OrgID, id)
	if err != nil {
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, "Failed to list payments", nil)
		return
	}

	response := struct {
		PledgeID string                `json:"pledge_id"`
		Count    int                   `json:"count"`
		Payments []*donations.Donation `json:"payments"`
	}{
		PledgeID: id,
		Count:    len(payments),
		Payments: payments,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// NextInvoice answers what the pledge's next expected payment looks like.
func (h *PledgeHandler) NextInvoice(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	svc := donations.NewService(donations.NewRepository(tenant.DB), h.receiptSvc)
	invoice, err := svc.NextInvoice(tenant.OrgID, params.ByName("pledge_id"))
	switch err {
	case nil:
	case donations.ErrNotFound:
		apiErrors.WriteError(w, http.StatusNotFound, apiErrors.ErrCodeNotFound, "Pledge not found", nil)
		return
	case donations.ErrNotAPledge, donations.ErrPledgeCancelled:
		apiErrors.WriteError(w, http.StatusBadRequest, apiErrors.ErrCodeInvalidInput, err.Error(), nil)
		return
	default:
		apiErrors.WriteError(w, http.StatusInternalServerError, apiErrors.ErrCodeInternal, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invoice)
}
