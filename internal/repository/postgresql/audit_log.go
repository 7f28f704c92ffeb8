package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/google/uuid"
)

type auditRepository struct {
	db *database.DB
}

// Create implements audit.Repository.
func (r *auditRepository) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return audit.Entry{}, fmt.Errorf("failed to generate audit id: %w", err)
		}
		entry.ID = id.String()
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	oldValues, err := marshalValues(entry.OldValues)
	if err != nil {
		return audit.Entry{}, err
	}
	newValues, err := marshalValues(entry.NewValues)
	if err != nil {
		return audit.Entry{}, err
	}

	query := `
		INSERT INTO audit_logs (
			id, actor_type, user_id, action, resource_type, resource_id,
			old_values, new_values, ip_address, user_agent, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		entry.ID,
		string(entry.Actor.Kind),
		entry.Actor.UserIDPtr(),
		string(entry.Action),
		string(entry.ResourceType),
		entry.ResourceID,
		oldValues,
		newValues,
		entry.IPAddress,
		entry.UserAgent,
		entry.Timestamp,
	).Scan(&entry.Timestamp)
	if err != nil {
		err = mapConstraintError(err, audit.ErrInvalidEntry, audit.ErrDuplicateEntry)
		return audit.Entry{}, fmt.Errorf("failed to create audit log: %w", err)
	}

	return entry, nil
}

func marshalValues(values map[string]any) ([]byte, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit values: %w", err)
	}
	return b, nil
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}
