package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/roadready/roadready-api/internal/model"
)

// LicenseRepo persists paid-access grants. All idempotency rests on the
// UNIQUE key over licenses.payment_intent_id: the synchronous confirm
// endpoint and the asynchronous webhook may both try to insert the same
// purchase, and whichever loses the race gets ErrDuplicateLicense instead
// of a second row. Do not replace the insert with a check-then-insert;
// the two writers can interleave between the check and the insert.
type LicenseRepo struct{ DB *sql.DB }

func NewLicenseRepo(db *sql.DB) *LicenseRepo { return &LicenseRepo{DB: db} }

// Create inserts a license for the payment reference. A bundle runs three
// months from purchase, anything else thirty days. Calling Create twice
// with the same intentID yields exactly one row; the second call returns
// ErrDuplicateLicense.
func (r *LicenseRepo) Create(ctx context.Context, userID uint64, intentID, kind, sessionID string) (time.Time, error) {
	now := time.Now().UTC()
	expires := now.AddDate(0, 0, 30)
	if kind == model.LicenseKindBundle {
		expires = now.AddDate(0, 3, 0)
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO licenses (user_id, payment_intent_id, checkout_session_id, kind, purchased_at, expires_at, is_active) VALUES (?,?,?,?,?,?,1)",
		userID, intentID, sessionID, kind, now, expires)
	if err != nil {
		// MySQL 1062 = duplicate entry on uq_licenses_intent
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return time.Time{}, ErrDuplicateLicense
		}
		return time.Time{}, err
	}
	return expires, nil
}

// ExistsForIntent reports whether a license row is already recorded for
// the payment reference.
func (r *LicenseRepo) ExistsForIntent(ctx context.Context, intentID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM licenses WHERE payment_intent_id=? LIMIT 1", intentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MostRecentActive returns the newest active, non-expired license for the
// user, or ErrNotFound when none exists. Expiry is a timestamp
// comparison; rows are never deleted.
func (r *LicenseRepo) MostRecentActive(ctx context.Context, userID uint64) (model.License, error) {
	var l model.License
	var session sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,payment_intent_id,checkout_session_id,kind,purchased_at,expires_at,is_active FROM licenses WHERE user_id=? AND is_active=1 AND expires_at>? ORDER BY expires_at DESC LIMIT 1",
		userID, time.Now().UTC()).
		Scan(&l.ID, &l.UserID, &l.PaymentIntentID, &session, &l.Kind, &l.PurchasedAt, &l.ExpiresAt, &l.IsActive)
	if err == sql.ErrNoRows {
		return model.License{}, ErrNotFound
	}
	if err != nil {
		return model.License{}, err
	}
	if session.Valid {
		l.CheckoutSessionID = session.String
	}
	return l, nil
}
