package store

import (
	"database/sql"

	"campuscard/internal/platform/database"
)

// openRaw opens a SQLite file without pinging or migrating it.
func openRaw(path string) (*sql.DB, error) {
	return sql.Open(database.DriverSQLite, database.SQLiteDSN(path))
}
