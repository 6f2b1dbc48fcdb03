package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kekspay-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// settingsRowID is the key of the single gateway_settings row.
const settingsRowID = 1

// SettingsRepo implements ports.SettingsRepository. Settings are stored as
// one JSONB document; secret values arrive already encrypted.
type SettingsRepo struct {
	pool Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(pool Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get returns the stored settings, or nil when none were saved yet.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM gateway_settings WHERE id = $1`, settingsRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var s domain.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

// Save upserts the settings row.
func (r *SettingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO gateway_settings (id, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		settingsRowID, data, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
