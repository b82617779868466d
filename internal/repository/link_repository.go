package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/roadready/roadready-api/internal/model"
)

// LinkRepo persists access links: session-bound tokens tied to one
// (centre, route) pair at mint time.
type LinkRepo struct{ DB *sql.DB }

func NewLinkRepo(db *sql.DB) *LinkRepo { return &LinkRepo{DB: db} }

// Create inserts an access link and returns its id.
func (r *LinkRepo) Create(ctx context.Context, userID uint64, centre string, routeNumber int, token string, expiresAt time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_links (user_id, centre_name, route_number, token, expires_at) VALUES (?,?,?,?,?)",
		userID, centre, routeNumber, token, expiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetForUser looks a link up scoped to its owning user. A token minted
// for user A resolves to ErrNotFound for user B even if guessed; the
// cross-user case must be indistinguishable from an unknown token.
func (r *LinkRepo) GetForUser(ctx context.Context, userID uint64, token string) (model.AccessLink, error) {
	var l model.AccessLink
	var last sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,centre_name,route_number,token,created_at,expires_at,is_used,last_accessed_at FROM access_links WHERE user_id=? AND token=? LIMIT 1",
		userID, token).
		Scan(&l.ID, &l.UserID, &l.CentreName, &l.RouteNumber, &l.Token, &l.CreatedAt, &l.ExpiresAt, &l.IsUsed, &last)
	if err == sql.ErrNoRows {
		return model.AccessLink{}, ErrNotFound
	}
	if err != nil {
		return model.AccessLink{}, err
	}
	if last.Valid {
		l.LastAccessedAt = &last.Time
	}
	return l, nil
}

// MarkUsed records a successful validation. is_used never gates a later
// validation; it only records that the link has been exercised.
func (r *LinkRepo) MarkUsed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_links SET is_used=1, last_accessed_at=NOW() WHERE id=?", id)
	return err
}
