// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// between failure scenarios: ErrDuplicateLicense marks the benign case of
// two writers racing on the same payment reference, while ErrNotFound
// covers lookups that resolve to nothing (including cross-user token
// lookups, which deliberately fail closed as not-found).
package repository

import "errors"

// ErrDuplicateLicense is returned when a license insert hits the unique
// constraint on payment_intent_id. The webhook path treats this as
// success; the confirm path reports it as an already-confirmed purchase.
var ErrDuplicateLicense = errors.New("license already exists for payment reference")

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")
