package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type migration struct {
	version    int
	statements []string
}

type dialect struct {
	sqlDriver  string
	numbered   bool // плейсхолдеры $1, $2 вместо ?
	migrations []migration
	dsn        func(string) string
	setup      func(*sql.DB)
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return postgresDialect, nil
	case DriverSQLite, "":
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind переводит запрос с ? в нумерованные плейсхолдеры.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var postgresDialect = dialect{
	sqlDriver: "pgx",
	numbered:  true,
	dsn:       func(dsn string) string { return dsn },
	setup:     func(*sql.DB) {},
	migrations: []migration{
		{1, []string{
			"CREATE TABLE IF NOT EXISTS orders (" +
				" id BIGSERIAL PRIMARY KEY," +
				" user_id BIGINT NOT NULL," +
				" address TEXT NOT NULL," +
				" time TEXT NOT NULL," +
				" equipment_type TEXT NOT NULL," +
				" problem TEXT NOT NULL," +
				" status VARCHAR (20) NOT NULL DEFAULT 'pending'," +
				" created_at TIMESTAMPTZ NOT NULL" +
				" )",
			"CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)",
		}},
		{2, []string{
			"CREATE TABLE IF NOT EXISTS reports (" +
				" id BIGSERIAL PRIMARY KEY," +
				" order_id BIGINT NOT NULL REFERENCES orders (id)," +
				" status VARCHAR (20) NOT NULL," +
				" total_amount NUMERIC," +
				" cost_price NUMERIC," +
				" created_at TIMESTAMPTZ NOT NULL" +
				" )",
			"CREATE INDEX IF NOT EXISTS reports_order_created_idx ON reports (order_id, created_at DESC)",
		}},
		{3, []string{
			"ALTER TABLE reports ADD COLUMN IF NOT EXISTS agreed_amount NUMERIC",
			"ALTER TABLE reports ADD COLUMN IF NOT EXISTS completion_date TEXT",
			"ALTER TABLE reports ADD COLUMN IF NOT EXISTS completion_time TEXT",
			"ALTER TABLE reports ADD COLUMN IF NOT EXISTS what_to_do TEXT",
		}},
	},
}

// Деньги в sqlite храним текстом, чтобы не терять точность.
var sqliteDialect = dialect{
	sqlDriver: "sqlite",
	dsn: func(path string) string {
		if strings.Contains(path, "?") {
			return path
		}
		if !strings.HasPrefix(path, "file:") {
			path = "file:" + path
		}
		return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	},
	setup: func(db *sql.DB) {
		// sqlite не любит параллельную запись
		db.SetMaxOpenConns(1)
	},
	migrations: []migration{
		{1, []string{
			"CREATE TABLE IF NOT EXISTS orders (" +
				" id INTEGER PRIMARY KEY AUTOINCREMENT," +
				" user_id INTEGER NOT NULL," +
				" address TEXT NOT NULL," +
				" time TEXT NOT NULL," +
				" equipment_type TEXT NOT NULL," +
				" problem TEXT NOT NULL," +
				" status TEXT NOT NULL DEFAULT 'pending'," +
				" created_at TIMESTAMP NOT NULL" +
				" )",
			"CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)",
		}},
		{2, []string{
			"CREATE TABLE IF NOT EXISTS reports (" +
				" id INTEGER PRIMARY KEY AUTOINCREMENT," +
				" order_id INTEGER NOT NULL REFERENCES orders (id)," +
				" status TEXT NOT NULL," +
				" total_amount TEXT," +
				" cost_price TEXT," +
				" created_at TIMESTAMP NOT NULL" +
				" )",
			"CREATE INDEX IF NOT EXISTS reports_order_created_idx ON reports (order_id, created_at DESC)",
		}},
		{3, []string{
			"ALTER TABLE reports ADD COLUMN agreed_amount TEXT",
			"ALTER TABLE reports ADD COLUMN completion_date TEXT",
			"ALTER TABLE reports ADD COLUMN completion_time TEXT",
			"ALTER TABLE reports ADD COLUMN what_to_do TEXT",
		}},
	},
}

// migrate применяет по порядку миграции, которых еще нет в schema_version.
// Каждая миграция - отдельная транзакция.
func migrate(ctx context.Context, db *sql.DB, d dialect) error {
	_, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS schema_version ("+
			" version INTEGER NOT NULL"+
			" )")
	if err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	err = db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range d.migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, d, m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		current = m.version
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, d dialect, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx, d.rebind("INSERT INTO schema_version (version) VALUES (?)"), m.version)
	if err != nil {
		return err
	}
	return tx.Commit()
}
