package database

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending migrations at startup. Running migrations
// before serving traffic is what guarantees the schema the queries
// expect (uniqueness on licenses.payment_intent_id and on tokens, the
// licenses.is_active column, the seeded settings row) actually exists,
// instead of tolerating drift query-by-query.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}
