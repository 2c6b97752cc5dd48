//go:build integration

package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/diff"
	"github.com/ridoystarlord/schemasync/generator"
	"github.com/ridoystarlord/schemasync/introspect"
	"github.com/ridoystarlord/schemasync/runner"
	"github.com/ridoystarlord/schemasync/schema"
)

func startPostgres(t *testing.T) database.Client {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	client := database.NewPgxClient(dsn)
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() { _ = client.End(ctx) })
	return client
}

func blogSchema(t *testing.T) *schema.Schema {
	t.Helper()
	var def schema.Definition
	def.AddTable("users",
		schema.ColumnSpec{Name: "id", Type: "integer", Primary: schema.Ptr(true)},
		schema.ColumnSpec{Name: "email", Type: "varchar", Length: schema.Ptr(255), Unique: schema.Ptr(true), Nullable: schema.Ptr(false)},
		schema.ColumnSpec{Name: "active", Type: "boolean", Nullable: schema.Ptr(false), Default: false},
	)
	def.AddTable("posts",
		schema.ColumnSpec{Name: "id", Type: "integer", Primary: schema.Ptr(true)},
		schema.ColumnSpec{Name: "user_id", Type: "integer", References: schema.Ptr("users")},
		schema.Shorthand("title", "text"),
	)
	s, err := schema.New(def)
	require.NoError(t, err)
	return s
}

func TestApply_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	client := startPostgres(t)
	desired := blogSchema(t)

	current, err := introspect.FromDatabase(ctx, client, introspect.DefaultSchema)
	require.NoError(t, err)
	require.Empty(t, current.Tables())

	d := diff.New(current, desired)
	up, err := d.Migration()
	require.NoError(t, err)
	statements, err := generator.GenerateSQL(up)
	require.NoError(t, err)
	require.NoError(t, generator.Check(statements))

	executed, err := runner.Apply(ctx, client, statements)
	require.NoError(t, err)
	assert.Equal(t, statements, executed)

	after, err := introspect.FromDatabase(ctx, client, introspect.DefaultSchema)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "posts"}, after.Tables())

	remaining, err := diff.Compare(after, desired)
	require.NoError(t, err)
	assert.True(t, remaining.Empty(), "database should match the declaration after apply")

	down, err := d.Rollback()
	require.NoError(t, err)
	rollback, err := generator.GenerateSQL(down)
	require.NoError(t, err)
	_, err = runner.Apply(ctx, client, rollback)
	require.NoError(t, err)

	restored, err := introspect.FromDatabase(ctx, client, introspect.DefaultSchema)
	require.NoError(t, err)
	assert.Empty(t, restored.Tables())
}

func TestApply_FailureLeavesDatabaseUntouched(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	client := startPostgres(t)

	statements := []string{
		`CREATE TABLE "widgets" ();`,
		`ALTER TABLE "widgets" ADD COLUMN "id" integer;`,
		`ALTER TABLE "missing" ADD COLUMN "id" integer;`,
	}
	_, err := runner.Apply(ctx, client, statements)

	var execErr *runner.QueryExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 2, execErr.Index)

	current, err := introspect.FromDatabase(ctx, client, introspect.DefaultSchema)
	require.NoError(t, err)
	assert.Empty(t, current.Tables())
}
