package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apiContext "authgate/internal/api/context"
	"authgate/internal/engine/auth"
	"authgate/internal/platform/session"
)

// Entry is the structured fact recorded after a mutation succeeds. The auth
// core only supplies the scope fields (organization/project ids, actor); this
// package is the collaborator that forwards them to the sink.
type Entry struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	Actor          string                 `json:"actor"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	Metadata       map[string]interface{} `json:"metadata"`
	IPAddress      string                 `json:"ip_address"`
	UserAgent      string                 `json:"user_agent"`
	CreatedAt      int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log writes an audit entry, pulling org id and actor from whichever identity
// the request carried: session claims on the console surface, resolved scope
// plus actor prefix on the public surface. Writes are fire-and-forget; an
// audit failure never fails the request that already succeeded.
func (l *Logger) Log(ctx context.Context, r *http.Request, action, resourceType, resourceID string, metadata map[string]interface{}) {
	var orgID, actor string

	if claims, ok := ctx.Value(apiContext.Claims).(*session.Claims); ok {
		orgID = claims.OrganizationID
		actor = claims.UserID
	}
	if scope, ok := ctx.Value(apiContext.Scope).(auth.Scope); ok && orgID == "" {
		orgID = scope.OrganizationID()
	}
	if a, ok := ctx.Value(apiContext.Actor).(string); ok && actor == "" {
		actor = a
	}

	ip := ""
	ua := ""
	if r != nil {
		ip = r.RemoteAddr
		ua = r.UserAgent()
	}

	metaJSON, _ := json.Marshal(metadata)

	entry := &Entry{
		ID:             "audit_" + uuid.New().String(),
		OrganizationID: orgID,
		Actor:          actor,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Metadata:       metadata,
		IPAddress:      ip,
		UserAgent:      ua,
		CreatedAt:      time.Now().Unix(),
	}

	go func() {
		query := `
			INSERT INTO audit_logs (id, organization_id, actor, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := l.db.Exec(query, entry.ID, entry.OrganizationID, entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.IPAddress, entry.UserAgent, entry.CreatedAt); err != nil {
			log.Error().Err(err).Str("action", action).Msg("failed to write audit entry")
		}
	}()
}
