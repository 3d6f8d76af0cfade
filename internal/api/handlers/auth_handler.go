package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"donorly/internal/engine/receipts"
	"donorly/internal/pkg/errors"
	"donorly/internal/pkg/validator"
	"donorly/internal/platform/auth"
	"donorly/internal/platform/config"
	"donorly/internal/platform/database"
	"donorly/internal/platform/models"
	"donorly/internal/platform/repositories"
)

type AuthHandler struct {
	userRepo     *repositories.UserRepository
	orgRepo      *repositories.OrganizationRepository
	receiptsRepo *receipts.Repository
	tokenSvc     *auth.TokenService
	dbPool       *database.TenantDBPool
	tenantCfg    config.TenantDBConfig
	receiptsCfg  config.ReceiptsConfig
}

func NewAuthHandler(
	userRepo *repositories.UserRepository,
	orgRepo *repositories.OrganizationRepository,
	receiptsRepo *receipts.Repository,
	tokenSvc *auth.TokenService,
	dbPool *database.TenantDBPool,
	tenantCfg config.TenantDBConfig,
	receiptsCfg config.ReceiptsConfig,
) *AuthHandler {
	return &AuthHandler{
		userRepo:     userRepo,
		orgRepo:      orgRepo,
		receiptsRepo: receiptsRepo,
		tokenSvc:     tokenSvc,
		dbPool:       dbPool,
		tenantCfg:    tenantCfg,
		receiptsCfg:  receiptsCfg,
	}
}

type SignupRequest struct {
	OrgName      string `json:"org_name"`
	OrgSlug      string `json:"org_slug"`
	ContactEmail string `json:"contact_email"`
	TaxExemptID  string `json:"tax_exempt_id"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
}

type SignupResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,40}$`)

// Signup registers an organization together with its first (owner) user,
// seeds the org's receipt numbering defaults, and provisions the tenant
// database.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.OrgName == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "org_name is required", nil)
		return
	}
	slug := strings.ToLower(req.OrgSlug)
	if !slugPattern.MatchString(slug) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "org_slug must be lowercase alphanumeric with hyphens", nil)
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if len(req.Password) < 8 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "password must be at least 8 characters", nil)
		return
	}

	existingOrg, err := h.orgRepo.GetBySlug(slug)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existingOrg != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Organization slug already taken", nil)
		return
	}

	existingUser, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existingUser != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:           "org_" + uuid.NewString(),
		Slug:         slug,
		Name:         req.OrgName,
		ContactEmail: req.ContactEmail,
		TaxExemptID:  req.TaxExemptID,
		DBFilePath:   filepath.Join(h.tenantCfg.BasePath, slug+".db"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user := &models.User{
		ID:             "usr_" + uuid.NewString(),
		OrganizationID: org.ID,
		Email:          req.Email,
		PasswordHash:   string(hashedPassword),
		FullName:       req.FullName,
		Role:           "owner",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := h.orgRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	if err := h.orgRepo.CreateTx(tx, org); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create organization", nil)
		return
	}
	if err := h.userRepo.CreateTx(tx, user); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create user", nil)
		return
	}
	if err := h.receiptsRepo.SeedTx(tx, org.ID, h.receiptsCfg.DefaultPrefix, h.receiptsCfg.DefaultFormat); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to seed receipt sequence", nil)
		return
	}
	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	// Provision the tenant database up front so the first donation request
	// does not pay the schema cost.
	tenantDB, err := h.dbPool.Get(org.ID, org.DBFilePath)
	if err == nil {
		err = database.EnsureTenantSchema(tenantDB)
	}
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to provision tenant database", nil)
		return
	}

	user.Organization = org

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.OrganizationID, user.Role, user.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SignupResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil || user.DeletedAt != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.OrganizationID, user.Role, user.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(user.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	h.userRepo.UpdateLastLogin(user.ID, time.Now().Unix())

	org, err := h.orgRepo.GetByID(user.OrganizationID)
	if err == nil {
		user.Organization = org
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	claims, err := h.tokenSvc.ValidateToken(req.RefreshToken)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid refresh token", nil)
		return
	}

	user, err := h.userRepo.GetByID(claims.Subject)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "User not found", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.OrganizationID, user.Role, user.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RefreshResponse{
		AccessToken: accessToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
