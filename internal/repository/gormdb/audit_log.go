package gormdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// Create implements audit.Repository.
func (r *auditRepository) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
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

	m := auditFromDomain(entry)
	var err error
	if m.OldValues, err = encodeValues(entry.OldValues); err != nil {
		return audit.Entry{}, err
	}
	if m.NewValues, err = encodeValues(entry.NewValues); err != nil {
		return audit.Entry{}, err
	}

	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		err = mapConstraintError(err, audit.ErrInvalidEntry, audit.ErrDuplicateEntry)
		return audit.Entry{}, fmt.Errorf("failed to create audit log: %w", err)
	}

	return entry, nil
}

func encodeValues(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit values: %w", err)
	}
	s := string(b)
	return &s, nil
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{db: db}
}
