package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
)

// SQLiteSink appends tables to a SQLite database, one database table per
// table name.
type SQLiteSink struct {
	db  *sql.DB
	log logger.Logger
}

// NewSQLiteSink opens or creates the database at dsn.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite sink: %w", err)
	}
	return &SQLiteSink{db: db, log: logger.New("sqlite-sink")}, nil
}

// Write inserts every row of t in a single transaction.
func (s *SQLiteSink) Write(ctx context.Context, t trace.Table) (err error) {
	if err := checkTable(t); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL(t, "REAL", "TEXT")); err != nil {
		return fmt.Errorf("sqlite sink: create %s: %w", t.Name, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertSQL(t))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(t.Columns)+1)
	args[0] = t.RunID
	for _, row := range t.Rows {
		copy(args[1:], row)
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite sink: insert into %s: %w", t.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.log.Debugf("inserted %d rows into %s", t.Len(), t.Name)
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error { return s.db.Close() }

func insertSQL(t trace.Table) string {
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, quoteIdent(runIDColumn))
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(t.Name), strings.Join(cols, ", "), marks)
}
