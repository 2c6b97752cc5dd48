package introspect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/schema"
)

type fakeClient struct {
	columns     []database.Row
	constraints []database.Row
	err         error
	args        [][]any
}

func (f *fakeClient) Connect(context.Context) error { return nil }
func (f *fakeClient) End(context.Context) error     { return nil }

func (f *fakeClient) Query(_ context.Context, sql string, args ...any) ([]database.Row, error) {
	f.args = append(f.args, args)
	if f.err != nil {
		return nil, f.err
	}
	switch sql {
	case ColumnQuery:
		return f.columns, nil
	case ConstraintQuery:
		return f.constraints, nil
	}
	return nil, errors.New("unexpected query")
}

func column(table, name, typ string, length any, nullable bool, def any) database.Row {
	return database.Row{
		"table":        table,
		"column":       name,
		"type":         typ,
		"length":       length,
		"nullable":     nullable,
		"default_info": def,
	}
}

func constraint(table, name, typ, column, references, fkColumn string) database.Row {
	return database.Row{
		"table":           table,
		"column":          column,
		"constraint_name": name,
		"constraint_type": typ,
		"references":      references,
		"fk_column":       fkColumn,
	}
}

func blogClient() *fakeClient {
	return &fakeClient{
		columns: []database.Row{
			column("users", "id", "character varying", int32(36), false, nil),
			column("posts", "id", "integer", nil, false, "nextval('posts_id_seq'::regclass)"),
			column("posts", "title", "text", nil, false, "'Hello, World!'::text"),
			column("posts", "author", "character varying", int32(36), true, nil),
			column("posts", "slug", "text", nil, true, "NULL::text"),
		},
		constraints: []database.Row{
			constraint("users", "users_pkey", PrimaryKey, "id", "users", "id"),
			constraint("posts", "posts_id_primary", PrimaryKey, "id", "posts", "id"),
			constraint("posts", "posts_slug_unique", Unique, "slug", "posts", "slug"),
			constraint("posts", "posts_author_foreignkey", ForeignKey, "id", "users", "author"),
			constraint("ghost", "ghost_pkey", PrimaryKey, "id", "ghost", "id"),
			constraint("posts", "posts_missing_fkey", ForeignKey, "id", "users", "missing"),
		},
	}
}

func TestFromDatabase(t *testing.T) {
	client := blogClient()

	s, err := FromDatabase(context.Background(), client, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"users", "posts"}, s.Tables())
	cols, err := s.Columns("posts")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "author", "slug"}, cols)

	id, err := s.Column("posts", "id")
	require.NoError(t, err)
	assert.Equal(t, schema.ColumnDefinition{
		Type:    "integer",
		Primary: true,
		Default: schema.Expression("nextval('posts_id_seq'::regclass)"),
	}, id)

	title, err := s.Column("posts", "title")
	require.NoError(t, err)
	assert.Equal(t, schema.ColumnDefinition{Type: "text", Default: "Hello, World!"}, title)

	author, err := s.Column("posts", "author")
	require.NoError(t, err)
	assert.Equal(t, schema.ColumnDefinition{
		Type: "character varying", Length: 36, References: "users", Nullable: true,
	}, author)

	slug, err := s.Column("posts", "slug")
	require.NoError(t, err)
	assert.True(t, slug.Unique)
	assert.Nil(t, slug.Default)

	for _, args := range client.args {
		assert.Equal(t, []any{DefaultSchema}, args)
	}
}

func TestFromDatabase_ResolvesCatalogTypes(t *testing.T) {
	withUDT := func(row database.Row, udt string) database.Row {
		row["udt_name"] = udt
		return row
	}
	price := column("events", "price", "numeric", nil, true, nil)
	price["numeric_precision"], price["numeric_scale"] = int32(10), int32(2)
	at := column("events", "at", "timestamp with time zone", nil, true, nil)
	at["datetime_precision"] = int32(3)
	created := column("events", "created", "timestamp without time zone", nil, true, nil)
	created["datetime_precision"] = int32(6)
	count := column("events", "count", "integer", nil, true, nil)
	count["numeric_precision"], count["numeric_scale"] = int32(32), int32(0)
	day := column("events", "day", "date", nil, true, nil)
	day["datetime_precision"] = int32(0)

	client := &fakeClient{columns: []database.Row{
		withUDT(column("events", "tags", ArrayType, nil, true, nil), "_text"),
		withUDT(column("events", "scores", ArrayType, nil, true, nil), "_int4"),
		withUDT(column("events", "codes", ArrayType, nil, true, nil), "_bpchar"),
		withUDT(column("events", "mood", UserDefinedType, nil, true, nil), "mood"),
		price, at, created, count, day,
	}}

	s, err := FromDatabase(context.Background(), client, "")
	require.NoError(t, err)

	want := map[string]string{
		"tags":    "text[]",
		"scores":  "integer[]",
		"codes":   "character[]",
		"mood":    "mood",
		"price":   "numeric(10,2)",
		"at":      "timestamp(3) with time zone",
		"created": "timestamp without time zone",
		"count":   "integer",
		"day":     "date",
	}
	for name, typ := range want {
		col, err := s.Column("events", name)
		require.NoError(t, err)
		assert.Equal(t, typ, col.SQLType(), name)
	}
}

func TestFromDatabase_SchemaNameIsBound(t *testing.T) {
	client := &fakeClient{}

	s, err := FromDatabase(context.Background(), client, "tenant_1")
	require.NoError(t, err)
	assert.Empty(t, s.Tables())
	assert.Equal(t, [][]any{{"tenant_1"}, {"tenant_1"}}, client.args)
}

func TestFromDatabase_QueryError(t *testing.T) {
	client := &fakeClient{err: errors.New("permission denied")}

	_, err := FromDatabase(context.Background(), client, "public")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying columns")
}

func TestParseDefault(t *testing.T) {
	tests := []struct {
		info string
		want any
	}{
		{"NULL::character varying", nil},
		{"NULL", nil},
		{"'Hello, World!'::text", "Hello, World!"},
		{"'O''Reilly'::character varying", "O'Reilly"},
		{"'a::b'::text", "a::b"},
		{"''::text", ""},
		{"'-1'::integer", int64(-1)},
		{"'1.5'::numeric(10,2)", 1.5},
		{"'42'::text", "42"},
		{"0", int64(0)},
		{"(-3)", int64(-3)},
		{"2.75", 2.75},
		{"true", true},
		{"false", false},
		{"now()", schema.Expression("now()")},
		{"CURRENT_TIMESTAMP", schema.Expression("CURRENT_TIMESTAMP")},
		{"nextval('posts_id_seq'::regclass)", schema.Expression("nextval('posts_id_seq'::regclass)")},
		{"('now'::text)::date", schema.Expression("('now'::text)::date")},
		{"'{}'::jsonb", "{}"},
		{"'2024-01-01'::date", "2024-01-01"},
		{"'x'::text || 'y'::text", schema.Expression("'x'::text || 'y'::text")},
	}

	for _, tt := range tests {
		t.Run(tt.info, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDefault(tt.info))
		})
	}
}
