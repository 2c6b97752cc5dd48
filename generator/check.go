package generator

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// StatementError reports a rendered statement that does not parse as exactly
// one PostgreSQL statement.
type StatementError struct {
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d %q: %v", e.Index, e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Check parses every statement with the PostgreSQL parser and fails on the
// first one that is invalid or holds more than one statement.
func Check(statements []string) error {
	for i, stmt := range statements {
		result, err := pg_query.Parse(stmt)
		if err != nil {
			return &StatementError{Index: i, Statement: stmt, Err: err}
		}
		if n := len(result.Stmts); n != 1 {
			return &StatementError{Index: i, Statement: stmt, Err: fmt.Errorf("parsed into %d statements", n)}
		}
	}
	return nil
}
