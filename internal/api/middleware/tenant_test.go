package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	apiContext "donorly/internal/api/context"
	"donorly/internal/platform/auth"
	"donorly/internal/platform/config"
	"donorly/internal/platform/database"
	"donorly/internal/platform/repositories"
)

func TestTenantMiddleware(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	orgRepo := repositories.NewOrganizationRepository(db)

	cfg := config.TenantDBConfig{BasePath: t.TempDir(), MaxConnectionsPerOrg: 1}
	pool := database.NewTenantDBPool(cfg)
	defer pool.CloseAll()

	middleware := NewTenantMiddleware(orgRepo, pool)

	t.Run("Valid Tenant", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)

		claims := &auth.Claims{
			OrganizationID: "org_123",
		}
		ctx := context.WithValue(req.Context(), apiContext.Claims, claims)
		req = req.WithContext(ctx)

		rows := sqlmock.NewRows([]string{"id", "slug", "name", "contact_email", "tax_exempt_id", "db_file_path", "created_at", "updated_at", "deleted_at"}).
			AddRow("org_123", "helping-hands", "Helping Hands Trust", "admin@helpinghands.org", "80G-12345", ":memory:", 1234567890, 1234567890, nil)

		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_123").
			WillReturnRows(rows)

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			tenant := r.Context().Value(apiContext.Tenant).(*database.TenantContext)
			if tenant.OrgID != "org_123" {
				t.Errorf("Expected OrgID org_123, got %s", tenant.OrgID)
			}
			if tenant.OrgSlug != "helping-hands" {
				t.Errorf("Expected OrgSlug helping-hands, got %s", tenant.OrgSlug)
			}
			if tenant.DB == nil {
				t.Error("Expected DB connection, got nil")
			}
			w.WriteHeader(http.StatusOK)
		})

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
	})

	t.Run("Org Not Found", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)

		claims := &auth.Claims{
			OrganizationID: "org_999",
		}
		ctx := context.WithValue(req.Context(), apiContext.Claims, claims)
		req = req.WithContext(ctx)

		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_999").
			WillReturnError(sql.ErrNoRows)

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusForbidden)
		}
	})

	t.Run("Missing Claims", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be called")
		})

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
		}
	})
}
