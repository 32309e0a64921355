// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// GetSettings returns all settings as a key/value map.
func (r *Repository) GetSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := r.q.SelectContext(ctx, &rows, `SELECT * FROM settings`); err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// SetSetting inserts or replaces a setting.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`), key, value)
	return err
}
