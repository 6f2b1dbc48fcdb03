package ports

import (
	"context"

	"kekspay-gateway/internal/core/domain"
)

// OrderRepository is the gateway's view of the shop's order store.
type OrderRepository interface {
	// GetByID returns nil, nil when the order does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// Save persists status, metadata, refunded total and queued notes.
	// Returns domain.ErrOrderConflict when the stored version moved on.
	Save(ctx context.Context, order *domain.Order) error
}

// SettingsRepository persists the gateway settings row.
type SettingsRepository interface {
	// Get returns nil, nil when settings were never saved.
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, settings *domain.Settings) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
