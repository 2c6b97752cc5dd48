// Package runner applies rendered statements inside one serializable
// transaction.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ridoystarlord/schemasync/database"
)

// Transaction control statements issued through the client.
const (
	BeginStatement    = "BEGIN ISOLATION LEVEL SERIALIZABLE"
	CommitStatement   = "COMMIT"
	RollbackStatement = "ROLLBACK"
)

// QueryExecutionError reports the statement that aborted a migration.
type QueryExecutionError struct {
	Index     int
	Statement string
	Err       error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("statement %d failed: %s: %v", e.Index+1, e.Statement, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// Apply runs statements in order inside a serializable transaction on
// client and returns the statements executed. The first failure rolls the
// transaction back and is returned as a *QueryExecutionError; nothing is
// retried and nothing after it runs. The caller owns Connect and End.
func Apply(ctx context.Context, client database.Client, statements []string) ([]string, error) {
	if len(statements) == 0 {
		return nil, nil
	}
	logger := slog.Default()

	if _, err := client.Query(ctx, BeginStatement); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	logger.Info("transaction started", "statements", len(statements))

	executed := make([]string, 0, len(statements))
	for i, stmt := range statements {
		logger.Debug("executing statement", "index", i+1, "statement", stmt)
		if _, err := client.Query(ctx, stmt); err != nil {
			logger.Error("statement failed, rolling back", "index", i+1, "statement", stmt, "error", err)
			rollback(ctx, client, logger)
			return nil, &QueryExecutionError{Index: i, Statement: stmt, Err: err}
		}
		executed = append(executed, stmt)
	}

	if _, err := client.Query(ctx, CommitStatement); err != nil {
		rollback(ctx, client, logger)
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	logger.Info("transaction committed", "statements", len(executed))
	return executed, nil
}

// rollback is best effort: the server discards an aborted transaction on its
// own once the session ends.
func rollback(ctx context.Context, client database.Client, logger *slog.Logger) {
	if _, err := client.Query(context.WithoutCancel(ctx), RollbackStatement); err != nil {
		logger.Warn("rollback failed", "error", err)
	}
}
