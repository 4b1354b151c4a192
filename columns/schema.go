package columns

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"scadamap/mapping"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func SupportedDrivers() []string {
	return []string{DriverSQLite, DriverPostgres}
}

// LiveSchema reads column names of one table, or of every base table when no
// table is set, from a database.
type LiveSchema struct {
	db     *sql.DB
	driver string
	table  string
}

func OpenLiveSchema(driver, dsn, table string) (*LiveSchema, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverSQLite, DriverPostgres:
	case "postgres", "postgresql":
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q (supported: %s)", driver, strings.Join(SupportedDrivers(), ", "))
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is required for driver %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return NewLiveSchema(db, driver, table), nil
}

func NewLiveSchema(db *sql.DB, driver, table string) *LiveSchema {
	return &LiveSchema{db: db, driver: driver, table: strings.TrimSpace(table)}
}

func (s *LiveSchema) Close() error {
	return s.db.Close()
}

func (s *LiveSchema) Candidates(ctx context.Context) (mapping.CandidateSet, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return mapping.CandidateSet{}, fmt.Errorf("ping %s database: %w", s.driver, err)
	}

	tables := []string{s.table}
	if s.table == "" {
		var err error
		tables, err = s.Tables(ctx)
		if err != nil {
			return mapping.CandidateSet{}, err
		}
	}

	names := make([]string, 0, 32)
	for _, table := range tables {
		cols, err := s.TableColumns(ctx, table)
		if err != nil {
			return mapping.CandidateSet{}, err
		}
		names = append(names, cols...)
	}

	source := SourceLive + ":" + s.driver
	if s.table != "" {
		source += "/" + s.table
	}
	return mapping.CandidateSet{Names: Unique(names), Source: source}, nil
}

func (s *LiveSchema) Tables(ctx context.Context) ([]string, error) {
	var query string
	switch s.driver {
	case DriverSQLite:
		query = `
SELECT name
FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name;`
	default:
		query = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
ORDER BY table_name;`
	}
	return s.queryNames(ctx, "tables", query)
}

func (s *LiveSchema) TableColumns(ctx context.Context, table string) ([]string, error) {
	switch s.driver {
	case DriverSQLite:
		return s.queryNames(ctx, "columns of "+table, `SELECT name FROM pragma_table_info(?) ORDER BY cid;`, table)
	default:
		return s.queryNames(ctx, "columns of "+table, `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1
ORDER BY ordinal_position;`, table)
	}
}

func (s *LiveSchema) queryNames(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	names := make([]string, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return names, nil
}
