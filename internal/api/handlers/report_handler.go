package handlers

import (
	"encoding/json"
	"net/http"

	apiContext "donorly/internal/api/context"
	"donorly/internal/engine/donations"
	"donorly/internal/engine/overdue"
	"donorly/internal/engine/schedule"
	"donorly/internal/pkg/errors"
	"donorly/internal/platform/database"
)

type ReportHandler struct{}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// Overdue lists the organization's active pledges whose next_due has
// elapsed, bucketed by severity. Follow-up actions (bulk pause/cancel) go
// through the pledge endpoints.
func (h *ReportHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)

	asOf := schedule.Today()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := schedule.ParseDate(raw)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
			return
		}
		asOf = parsed
	}

	svc := overdue.NewService(donations.NewRepository(tenant.DB))
	entries, err := svc.ListOverdue(tenant.OrgID, asOf)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to scan overdue pledges", nil)
		return
	}

	response := struct {
		AsOf    schedule.Date   `json:"as_of"`
		Count   int             `json:"count"`
		Entries []overdue.Entry `json:"entries"`
	}{
		AsOf:    asOf,
		Count:   len(entries),
		Entries: entries,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
