// Package license decides whether a user currently holds paid access.
package license

import (
	"context"
	"errors"
	"time"

	"github.com/roadready/roadready-api/internal/model"
	"github.com/roadready/roadready-api/internal/repository"
)

// Store is the slice of LicenseRepo the checker needs. Declared here so
// tests can substitute a fake without a database.
type Store interface {
	MostRecentActive(ctx context.Context, userID uint64) (model.License, error)
}

// Checker evaluates license status as an ordered list of predicates:
// first the static admin allow-list, then the row-based lookup. Keeping
// the allow-list a predicate of its own (rather than a branch buried in
// SQL) makes the rule independently testable.
type Checker struct {
	Licenses  Store
	Allowlist map[uint64]bool
}

func NewChecker(licenses Store, allowlist map[uint64]bool) *Checker {
	return &Checker{Licenses: licenses, Allowlist: allowlist}
}

// Active returns the user's current license, or nil when the user holds
// none. Absence of a license is not an error; callers gate paid actions
// on the nil check. Allow-list members receive a synthetic permanent
// license that never touches the database.
func (c *Checker) Active(ctx context.Context, userID uint64) (*model.License, error) {
	if c.Allowlist[userID] {
		return &model.License{
			UserID:    userID,
			Kind:      model.LicenseKindBundle,
			ExpiresAt: time.Now().UTC().AddDate(100, 0, 0),
			IsActive:  true,
			Permanent: true,
		}, nil
	}
	l, err := c.Licenses.MostRecentActive(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
