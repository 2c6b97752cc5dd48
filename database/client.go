// Package database defines the connection the runner and introspection
// talk through, and its pgx implementation.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Row is one result row keyed by column name.
type Row map[string]any

// String returns the text in field key, or "" when it is NULL or not text.
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Bool returns the boolean in field key.
func (r Row) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Int returns the integer in field key and whether it held one.
func (r Row) Int(key string) (int, bool) {
	switch n := r[key].(type) {
	case int:
		return n, true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

// Client is a single database session. Query runs text with optional
// positional arguments; statements such as BEGIN and COMMIT go through it
// too. End releases the session and may be called more than once.
type Client interface {
	Connect(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)
	End(ctx context.Context) error
}

// ErrNotConnected is returned by Query before Connect succeeds.
var ErrNotConnected = errors.New("database client is not connected")

// PgxClient is a Client over one pgx connection.
type PgxClient struct {
	url    string
	conn   *pgx.Conn
	logger *slog.Logger
}

// NewPgxClient returns an unconnected client for the connection string url.
func NewPgxClient(url string) *PgxClient {
	return &PgxClient{url: url, logger: slog.Default()}
}

// Connect opens the connection and pings it.
func (c *PgxClient) Connect(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("database url not set: configure database.url or DATABASE_URL")
	}
	if c.conn != nil {
		return nil
	}

	conn, err := pgx.Connect(ctx, c.url)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return fmt.Errorf("unable to ping database: %w", err)
	}

	c.conn = conn
	c.logger.Debug("connected to database", "host", conn.Config().Host, "database", conn.Config().Database)
	return nil
}

// Query runs sql and collects every returned row. Statements without
// arguments use the simple protocol so DDL and transaction control are not
// prepared.
func (c *PgxClient) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if len(args) == 0 {
		args = []any{pgx.QueryExecModeSimpleProtocol}
	}

	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	result := make([]Row, len(maps))
	for i, m := range maps {
		result[i] = Row(m)
	}
	return result, nil
}

// End closes the connection. Calling it again is a no-op.
func (c *PgxClient) End(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	if err := conn.Close(ctx); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}
