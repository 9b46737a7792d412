package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/models"
)

type Filter struct {
	OrganizationID *uint
	Action         string
	Entity         string
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

// Store persists and lists audit rows. Implemented by the gorm repository
// and by the in-memory store.
type Store interface {
	AppendAudit(ctx context.Context, entry *models.AuditLog) error
	ListAudit(ctx context.Context, f Filter) ([]models.AuditLog, int64, error)
}

type Logger struct {
	store Store
}

func New(store Store) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		OrganizationID: ev.OrganizationID,
		UserID:         ev.UserID,
		Action:         ev.Action,
		Entity:         ev.Entity,
		EntityID:       ev.EntityID,
		Metadata:       metaJSON,
	}

	return l.store.AppendAudit(ctx, &entry)
}
