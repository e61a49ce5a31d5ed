package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/notification"
)

// Store is the Postgres in-app inbox.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Send inserts the notification unless one with the same idempotency key
// already exists for the tenant.
func (s *Store) Send(ctx context.Context, n notification.Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("encoding notification metadata: %w", err)
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	var key sql.NullString
	if n.IdempotencyKey != "" {
		key = sql.NullString{String: n.IdempotencyKey, Valid: true}
	}

	query := `
		INSERT INTO notifications (id, tenant_id, kind, title, message, metadata, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (tenant_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query,
		n.ID, n.TenantID, n.Kind, n.Title, n.Message, string(metadata), key,
	); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}

	return nil
}
