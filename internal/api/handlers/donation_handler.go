package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "donorly/internal/api/context"
	"donorly/internal/engine/donations"
	"donorly/internal/engine/receipts"
	"donorly/internal/pkg/errors"
	"donorly/internal/platform/audit"
	"donorly/internal/platform/database"
)

type DonationHandler struct {
	receiptSvc *receipts.Service
	audit      *audit.Logger
}

func NewDonationHandler(receiptSvc *receipts.Service, auditLogger *audit.Logger) *DonationHandler {
	return &DonationHandler{
		receiptSvc: receiptSvc,
		audit:      auditLogger,
	}
}

func (h *DonationHandler) service(tenant *database.TenantContext) *donations.Service {
	return donations.NewService(donations.NewRepository(tenant.DB), h.receiptSvc)
}

// writeDonationError maps engine sentinel errors onto the HTTP envelope so
// callers can always distinguish bad input, missing rows, and conflicts.
func writeDonationError(w http.ResponseWriter, err error) {
	switch err {
	case donations.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Donation not found", nil)
	case donations.ErrConflict:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Concurrent modification detected, retry the request", nil)
	case donations.ErrNotAPledge, donations.ErrPledgeCancelled, donations.ErrPledgeHasPayments:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, err.Error(), nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
	}
}

// Create records a donation: a one-off, a new pledge, or a payment linked to
// an existing pledge. The receipt number is stamped before the row persists.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)

	var req donations.NewDonation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := donations.ValidateNewDonation(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	donation, err := h.service(tenant).Create(tenant.OrgID, &req)
	if err != nil {
		writeDonationError(w, err)
		return
	}

	h.audit.Log(r.Context(), "donation.created", "donation", donation.ID, map[string]interface{}{
		"kind":           string(donation.Kind),
		"amount":         donation.Amount,
		"receipt_number": donation.ReceiptNumber,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(donation)
}

func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	list, err := h.service(tenant).List(tenant.OrgID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list donations", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	donation, err := h.service(tenant).Get(tenant.OrgID, params.ByName("donation_id"))
	if err != nil {
		writeDonationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(donation)
}

func (h *DonationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("donation_id")

	if err := h.service(tenant).Delete(tenant.OrgID, id); err != nil {
		writeDonationError(w, err)
		return
	}

	h.audit.Log(r.Context(), "donation.deleted", "donation", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// MarkReceiptEmailed flips the one mutable flag a recorded payment has.
func (h *DonationHandler) MarkReceiptEmailed(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("donation_id")

	if err := h.service(tenant).MarkReceiptEmailed(tenant.OrgID, id); err != nil {
		writeDonationError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
