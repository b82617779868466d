package model

import "time"

// User represents a row of the `users` table. Accounts are created on
// signup and never deleted; every other entity references users.id by
// foreign key. Only the bcrypt hash of the password is stored.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lower-cased)
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
