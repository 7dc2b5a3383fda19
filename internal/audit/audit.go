package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionDelete       = "delete"
	ActionStatusChange = "status_change"
	ActionExport       = "export"
	ActionRoleChange   = "role_change"
)

type Entry struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	IP         *string
	UserAgent  *string
	Metadata   map[string]any
}

// Log writes audit entries to audit_logs. A nil Log or a Log without a pool
// drops entries.
type Log struct {
	Pool *pgxpool.Pool
}

func NewLog(pool *pgxpool.Pool) *Log {
	return &Log{Pool: pool}
}

// Write records an audit entry; failures are returned so callers can ignore if needed.
func (l *Log) Write(ctx context.Context, e Entry) error {
	if l == nil || l.Pool == nil {
		return nil
	}

	var metadata any
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = json.RawMessage(raw)
	}

	_, err := l.Pool.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, e.UserAgent, metadata)

	return err
}

// Ptr is a helper for the optional columns.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
