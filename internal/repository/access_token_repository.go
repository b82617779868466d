package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/roadready/roadready-api/internal/model"
)

// AccessTokenRepo persists capability tokens. Unlike access links these
// are looked up by token alone: possession is the credential, so there is
// deliberately no user scoping on reads.
type AccessTokenRepo struct{ DB *sql.DB }

func NewAccessTokenRepo(db *sql.DB) *AccessTokenRepo { return &AccessTokenRepo{DB: db} }

// Create inserts an access token and returns its id.
func (r *AccessTokenRepo) Create(ctx context.Context, userID uint64, token string, expiresAt time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, token, expiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByToken fetches a token row by its opaque value, or ErrNotFound.
func (r *AccessTokenRepo) GetByToken(ctx context.Context, token string) (model.AccessToken, error) {
	var t model.AccessToken
	var last sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,token,created_at,expires_at,is_used,last_accessed_at FROM access_tokens WHERE token=? LIMIT 1",
		token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.IsUsed, &last)
	if err == sql.ErrNoRows {
		return model.AccessToken{}, ErrNotFound
	}
	if err != nil {
		return model.AccessToken{}, err
	}
	if last.Valid {
		t.LastAccessedAt = &last.Time
	}
	return t, nil
}

// MarkUsed records a redemption; informational, same as access links.
func (r *AccessTokenRepo) MarkUsed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET is_used=1, last_accessed_at=NOW() WHERE id=?", id)
	return err
}
