package repository

import (
	"context"
	"database/sql"

	"github.com/roadready/roadready-api/internal/model"
)

// SettingsRepo reads the single fixed-id configuration row.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// LinkExpiryHours returns settings.link_expiry_hours for row id=1. Any
// failure (missing row, query error, nonsense value) yields the default
// instead of an error: a broken settings table must never block a paid
// user from minting links.
func (r *SettingsRepo) LinkExpiryHours(ctx context.Context) int {
	var hours int
	err := r.DB.QueryRowContext(ctx,
		"SELECT link_expiry_hours FROM settings WHERE id=1 LIMIT 1").Scan(&hours)
	if err != nil || hours <= 0 {
		return model.DefaultLinkExpiryHours
	}
	return hours
}

// SetLinkExpiryHours updates the settings row, creating it when absent.
// Administrative path; not exposed on the public surface.
func (r *SettingsRepo) SetLinkExpiryHours(ctx context.Context, hours int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO settings (id, link_expiry_hours) VALUES (1,?) ON DUPLICATE KEY UPDATE link_expiry_hours=VALUES(link_expiry_hours)",
		hours)
	return err
}
