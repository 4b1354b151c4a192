package store

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"scadamap/mapping"
)

// SQLiteStore keeps the document in a mappings table. Save replaces the
// table content in one transaction.
type SQLiteStore struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

func OpenSQLite(path string, logger logrus.FieldLogger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger.WithField("path", path)}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS mappings (
	mapping_key TEXT PRIMARY KEY,
	column_name TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(doc mapping.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return persistenceError("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM mappings;`); err != nil {
		_ = tx.Rollback()
		return persistenceError("clear mappings: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO mappings (mapping_key, column_name) VALUES (?, ?);`)
	if err != nil {
		_ = tx.Rollback()
		return persistenceError("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, key := range doc.Keys() {
		if _, err := stmt.Exec(key, doc[key]); err != nil {
			_ = tx.Rollback()
			return persistenceError("insert mapping %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceError("commit transaction: %w", err)
	}

	s.logger.WithField("mappings", len(doc)).Debug("mapping document saved")
	return nil
}

func (s *SQLiteStore) Load() mapping.Document {
	doc := mapping.Document{}

	rows, err := s.db.Query(`SELECT mapping_key, column_name FROM mappings ORDER BY mapping_key;`)
	if err != nil {
		s.logger.WithError(err).Warn("cannot query mappings, starting empty")
		return doc
	}
	defer rows.Close()

	for rows.Next() {
		var key, column string
		if err := rows.Scan(&key, &column); err != nil {
			s.logger.WithError(err).Warn("cannot scan mapping row, starting empty")
			return mapping.Document{}
		}
		doc[key] = column
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Warn("cannot iterate mappings, starting empty")
		return mapping.Document{}
	}

	return doc
}
