package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "donorly/internal/api/context"
	"donorly/internal/api/handlers"
	"donorly/internal/api/middleware"
	"donorly/internal/pkg/errors"
	"donorly/internal/platform/auth"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	OrgHandler       *handlers.OrgHandler
	DonorHandler     *handlers.DonorHandler
	DonationHandler  *handlers.DonationHandler
	PledgeHandler    *handlers.PledgeHandler
	ReportHandler    *handlers.ReportHandler
	HealthHandler    *handlers.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Authentication routes
	router.POST("/api/v1/auth/signup", wrap(deps.AuthHandler.Signup))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/v1/auth/refresh", wrap(deps.AuthHandler.Refresh))
	router.POST("/api/v1/auth/logout", wrap(deps.AuthHandler.Logout))

	authMid := deps.AuthMiddleware
	tenantMid := deps.TenantMiddleware

	// Organization settings (incl. receipt numbering)
	router.GET("/api/v1/organizations/current",
		chain(deps.OrgHandler.GetCurrent, authMid.Handle, tenantMid.Handle))
	router.PATCH("/api/v1/organizations/current",
		chain(deps.OrgHandler.Update, authMid.Handle, tenantMid.Handle, requireRole("admin", "owner")))

	// Donor management
	router.POST("/api/v1/donors",
		chain(deps.DonorHandler.Create, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/donors",
		chain(deps.DonorHandler.List, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/donors/:donor_id",
		chain(deps.DonorHandler.Get, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_read")))
	router.PATCH("/api/v1/donors/:donor_id",
		chain(deps.DonorHandler.Update, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))
	router.DELETE("/api/v1/donors/:donor_id",
		chain(deps.DonorHandler.Delete, authMid.Handle, tenantMid.Handle, requireRole("admin", "owner")))

	// Donation capture
	router.POST("/api/v1/donations",
		chain(deps.DonationHandler.Create, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/donations",
		chain(deps.DonationHandler.List, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/donations/:donation_id",
		chain(deps.DonationHandler.Get, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_read")))
	router.DELETE("/api/v1/donations/:donation_id",
		chain(deps.DonationHandler.Delete, authMid.Handle, tenantMid.Handle, requireRole("admin", "owner")))
	router.POST("/api/v1/donations/:donation_id/receipt-emailed",
		chain(deps.DonationHandler.MarkReceiptEmailed, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))

	// Pledge lifecycle
	router.POST("/api/v1/pledges/:pledge_id/pause",
		chain(deps.PledgeHandler.Pause, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/pledges/:pledge_id/resume",
		chain(deps.PledgeHandler.Resume, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/pledges/:pledge_id/cancel",
		chain(deps.PledgeHandler.Cancel, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/pledges/:pledge_id/payments",
		chain(deps.PledgeHandler.Payments, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/pledges/:pledge_id/next-invoice",
		chain(deps.PledgeHandler.NextInvoice, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_read")))
	// Kept outside /pledges/:pledge_id to avoid a wildcard route conflict.
	router.POST("/api/v1/bulk/pledge-status",
		chain(deps.PledgeHandler.BulkStatus, authMid.Handle, tenantMid.Handle, middleware.RateLimit("api_write")))

	// Reports
	router.GET("/api/v1/reports/overdue",
		chain(deps.ReportHandler.Overdue, authMid.Handle, tenantMid.Handle, middleware.RateLimit("reports")))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
