package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
)

// pgConn is the subset of *pgx.Conn used by PostgresSink.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Close(ctx context.Context) error
}

// PostgresSink bulk loads tables into PostgreSQL with COPY.
type PostgresSink struct {
	conn pgConn
	log  logger.Logger
}

// NewPostgresSink connects to the database described by dsn.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres sink: connect: %w", err)
	}
	return newPostgresSink(conn), nil
}

func newPostgresSink(conn pgConn) *PostgresSink {
	return &PostgresSink{conn: conn, log: logger.New("postgres-sink")}
}

// Write creates the table when missing and copies every row of t into it.
func (s *PostgresSink) Write(ctx context.Context, t trace.Table) error {
	if err := checkTable(t); err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, createTableSQL(t, "DOUBLE PRECISION", "TEXT")); err != nil {
		return fmt.Errorf("postgres sink: create %s: %w", t.Name, err)
	}
	columns := append([]string{runIDColumn}, t.Columns...)
	n, err := s.conn.CopyFrom(ctx, pgx.Identifier{t.Name}, columns, pgx.CopyFromRows(copyRows(t)))
	if err != nil {
		return fmt.Errorf("postgres sink: copy into %s: %w", t.Name, err)
	}
	if int(n) != t.Len() {
		return fmt.Errorf("postgres sink: copied %d of %d rows into %s", n, t.Len(), t.Name)
	}
	s.log.Debugf("copied %d rows into %s", n, t.Name)
	return nil
}

// Close terminates the connection.
func (s *PostgresSink) Close() error { return s.conn.Close(context.Background()) }

func copyRows(t trace.Table) [][]any {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]any, 0, len(row)+1)
		r = append(r, t.RunID)
		rows[i] = append(r, row...)
	}
	return rows
}
