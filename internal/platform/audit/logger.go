package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apiContext "donorly/internal/api/context"
	"donorly/internal/platform/auth"
	"donorly/internal/platform/database"
)

// AuditLog records who changed what: donation captures, pledge status
// transitions, settings updates. Rows live in the global database so an
// organization's trail survives tenant-level operations.
type AuditLog struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	UserID         string                 `json:"user_id"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	Metadata       map[string]interface{} `json:"metadata"`
	CreatedAt      int64                  `json:"created_at"`
}

type Logger struct {
	globalDB *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{globalDB: db}
}

func (l *Logger) Log(ctx context.Context, action, resourceType, resourceID string, metadata map[string]interface{}) {
	var orgID, userID string

	if claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims); ok {
		orgID = claims.OrganizationID
		userID = claims.UserID
	}
	if tenant, ok := ctx.Value(apiContext.Tenant).(*database.TenantContext); ok && orgID == "" {
		orgID = tenant.OrgID
	}

	metaJSON, _ := json.Marshal(metadata)

	entry := &AuditLog{
		ID:             "audit_" + uuid.NewString(),
		OrganizationID: orgID,
		UserID:         userID,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Metadata:       metadata,
		CreatedAt:      time.Now().Unix(),
	}

	go func() {
		query := `
			INSERT INTO audit_logs (id, organization_id, user_id, action, resource_type, resource_id, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := l.globalDB.Exec(query, entry.ID, entry.OrganizationID, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.CreatedAt); err != nil {
			log.Error().Err(err).Str("action", action).Msg("failed to write audit log")
		}
	}()
}
