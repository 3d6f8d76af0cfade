package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "donorly/internal/api/context"
	"donorly/internal/engine/donations"
	"donorly/internal/engine/donors"
	"donorly/internal/pkg/errors"
	"donorly/internal/platform/database"
)

type DonorHandler struct{}

func NewDonorHandler() *DonorHandler {
	return &DonorHandler{}
}

func donorService(tenant *database.TenantContext) *donors.Service {
	return donors.NewService(
		donors.NewRepository(tenant.DB),
		donations.NewRepository(tenant.DB),
	)
}

func (h *DonorHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)

	var req donors.Donor
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	donor, err := donorService(tenant).Create(tenant.OrgID, &req)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(donor)
}

func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request) {
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

	list, err := donorService(tenant).List(tenant.OrgID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list donors", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *DonorHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	donor, err := donorService(tenant).Get(tenant.OrgID, params.ByName("donor_id"))
	if err == donors.ErrNotFound {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Donor not found", nil)
		return
	}
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load donor", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(donor)
}

func (h *DonorHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	var req donors.Donor
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	donor, err := donorService(tenant).Update(tenant.OrgID, params.ByName("donor_id"), &req)
	if err == donors.ErrNotFound {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Donor not found", nil)
		return
	}
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(donor)
}

func (h *DonorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	err := donorService(tenant).Delete(tenant.OrgID, params.ByName("donor_id"))
	switch err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case donors.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Donor not found", nil)
	case donors.ErrHasDonations:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, err.Error(), nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete donor", nil)
	}
}
