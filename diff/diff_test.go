package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schemasync/migration"
	"github.com/ridoystarlord/schemasync/schema"
)

func mustSchema(t *testing.T, def schema.Definition) *schema.Schema {
	t.Helper()
	s, err := schema.New(def)
	require.NoError(t, err)
	return s
}

func postsSource(t *testing.T) *schema.Schema {
	var def schema.Definition
	def.AddTable("posts", schema.ColumnSpec{Name: "id", Type: "varchar", Primary: schema.Ptr(true)})
	return mustSchema(t, def)
}

func postsWithTitle(t *testing.T) *schema.Schema {
	var def schema.Definition
	def.AddTable("posts",
		schema.ColumnSpec{Name: "id", Type: "varchar", Primary: schema.Ptr(true)},
		schema.ColumnSpec{Name: "title", Type: "text", Nullable: schema.Ptr(false), Default: "Hello, World!"},
	)
	return mustSchema(t, def)
}

func TestCompare_IdenticalSchemasAreEmpty(t *testing.T) {
	var a, b schema.Definition
	a.AddTable("posts", schema.Shorthand("id", "varchar"), schema.Shorthand("at", "timestamp"))
	b.AddTable("posts", schema.Shorthand("at", "timestamp without time zone"), schema.Shorthand("id", "character varying"))

	m, err := Compare(mustSchema(t, a), mustSchema(t, b))
	require.NoError(t, err)
	assert.True(t, m.Empty())
}

func TestCompare_AddColumn(t *testing.T) {
	m, err := Compare(postsSource(t), postsWithTitle(t))
	require.NoError(t, err)

	after := schema.ColumnDefinition{Type: "text", Default: "Hello, World!"}
	want := []migration.Operation{{
		Target: migration.Columns,
		Type:   migration.Create,
		Name:   "posts.title",
		Changes: &migration.Changes{
			From: schema.Attributes{},
			To:   after.Attributes(),
		},
		After: &after,
	}}
	if diff := cmp.Diff(want, m.Operations()); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, m.Bucket(migration.CreateColumns), 1)
}

func TestCompare_DropColumn(t *testing.T) {
	m, err := Compare(postsWithTitle(t), postsSource(t))
	require.NoError(t, err)

	ops := m.Bucket(migration.DropColumns)
	require.Len(t, ops, 1)
	assert.Equal(t, "posts.title", ops[0].Name)
	assert.Empty(t, ops[0].Changes.To)
	assert.Equal(t, "Hello, World!", ops[0].Changes.From[schema.AttrDefault])
	assert.Nil(t, ops[0].After)
}

func TestCompare_CreateTable(t *testing.T) {
	var src, dst schema.Definition
	src.AddTable("users", schema.ColumnSpec{Name: "id", Type: "int", Primary: schema.Ptr(true)})
	dst.AddTable("users", schema.ColumnSpec{Name: "id", Type: "int", Primary: schema.Ptr(true)}).
		AddTable("comments",
			schema.Shorthand("id", "int"),
			schema.ColumnSpec{Name: "author", Type: "int", References: schema.Ptr("users")},
		)

	m, err := Compare(mustSchema(t, src), mustSchema(t, dst))
	require.NoError(t, err)

	tables := m.Bucket(migration.CreateTables)
	require.Len(t, tables, 1)
	assert.Equal(t, "comments", tables[0].Name)
	assert.Nil(t, tables[0].Changes)

	cols := m.Bucket(migration.CreateColumns)
	require.Len(t, cols, 2)
	assert.Equal(t, "comments.id", cols[0].Name)
	assert.Equal(t, "comments.author", cols[1].Name)
	assert.Equal(t, "users", cols[1].Changes.To[schema.AttrReferences])
}

func TestCompare_DropTable(t *testing.T) {
	var src, dst schema.Definition
	src.AddTable("legacy", schema.ColumnSpec{Name: "id", Type: "int", Primary: schema.Ptr(true)})

	m, err := Compare(mustSchema(t, src), mustSchema(t, dst))
	require.NoError(t, err)

	require.Len(t, m.Bucket(migration.DropTables), 1)
	cols := m.Bucket(migration.DropColumns)
	require.Len(t, cols, 1)
	assert.Equal(t, "legacy.id", cols[0].Name)
	assert.Equal(t, true, cols[0].Changes.From[schema.AttrPrimary])
}

func TestCompare_AlterOnlyChangedAttributes(t *testing.T) {
	var src, dst schema.Definition
	src.AddTable("posts", schema.ColumnSpec{Name: "title", Type: "varchar", Length: schema.Ptr(100)})
	dst.AddTable("posts", schema.ColumnSpec{Name: "title", Type: "varchar", Length: schema.Ptr(200), Nullable: schema.Ptr(false)})

	m, err := Compare(mustSchema(t, src), mustSchema(t, dst))
	require.NoError(t, err)

	ops := m.Bucket(migration.AlterColumns)
	require.Len(t, ops, 1)
	want := &migration.Changes{
		From: schema.Attributes{schema.AttrLength: 100, schema.AttrNullable: true},
		To:   schema.Attributes{schema.AttrLength: 200, schema.AttrNullable: false},
	}
	if diff := cmp.Diff(want, ops[0].Changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, ops[0].After)
	assert.Equal(t, "character varying(200)", ops[0].After.SQLType())
}

func TestDiffColumns(t *testing.T) {
	a := schema.Attributes{schema.AttrType: "varchar", schema.AttrNullable: true}
	b := schema.Attributes{schema.AttrType: "varchar", schema.AttrNullable: false}

	got := DiffColumns(a, b)

	assert.Equal(t, schema.Attributes{schema.AttrNullable: true}, got.From)
	assert.Equal(t, schema.Attributes{schema.AttrNullable: false}, got.To)
}

func TestDiffColumns_KeyOnOneSide(t *testing.T) {
	got := DiffColumns(schema.Attributes{}, schema.Attributes{schema.AttrUnique: true})

	assert.Equal(t, schema.Attributes{schema.AttrUnique: nil}, got.From)
	assert.Equal(t, schema.Attributes{schema.AttrUnique: true}, got.To)
}

func TestDiff_MemoisesAndReversesRollback(t *testing.T) {
	d := New(postsSource(t), postsWithTitle(t))

	first, err := d.Migration()
	require.NoError(t, err)
	second, err := d.Migration()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.False(t, first.Reversed())

	rollback, err := d.Rollback()
	require.NoError(t, err)
	assert.True(t, rollback.Reversed())
	ops := rollback.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, migration.Drop, ops[0].Type)
	assert.Equal(t, "posts.title", ops[0].Name)
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, union([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.Empty(t, union[string](nil, nil))
}
