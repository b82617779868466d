package model

import "time"

// TestResult stores the outcome of one mock theory test.
type TestResult struct {
	ID       uint64    // test_results.id
	UserID   uint64    // test_results.user_id
	Category string    // test_results.category (e.g. "signs", "rules")
	Score    int       // test_results.score
	Total    int       // test_results.total
	TakenAt  time.Time // test_results.taken_at
}
