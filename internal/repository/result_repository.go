package repository

import (
	"context"
	"database/sql"

	"github.com/roadready/roadready-api/internal/model"
)

// ResultRepo stores mock theory-test outcomes.
type ResultRepo struct{ DB *sql.DB }

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{DB: db} }

// Create inserts a result row and returns its id.
func (r *ResultRepo) Create(ctx context.Context, userID uint64, category string, score, total int) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO test_results (user_id, category, score, total) VALUES (?,?,?,?)",
		userID, category, score, total)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the user's results, newest first.
func (r *ResultRepo) ListByUser(ctx context.Context, userID uint64) ([]model.TestResult, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,category,score,total,taken_at FROM test_results WHERE user_id=? ORDER BY taken_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TestResult{}
	for rows.Next() {
		var t model.TestResult
		if err := rows.Scan(&t.ID, &t.UserID, &t.Category, &t.Score, &t.Total, &t.TakenAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CategorySummary aggregates one category's results for a user.
type CategorySummary struct {
	Category string  `json:"category"`
	Attempts int     `json:"attempts"`
	Best     int     `json:"best"`
	Average  float64 `json:"average"`
}

// SummaryByUser returns per-category attempt counts, best score and
// average score for the user.
func (r *ResultRepo) SummaryByUser(ctx context.Context, userID uint64) ([]CategorySummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT category, COUNT(*), MAX(score), AVG(score) FROM test_results WHERE user_id=? GROUP BY category ORDER BY category",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CategorySummary{}
	for rows.Next() {
		var s CategorySummary
		if err := rows.Scan(&s.Category, &s.Attempts, &s.Best, &s.Average); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
