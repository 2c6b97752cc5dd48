package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schemasync/schema"
)

const blogYAML = `
users:
  id: { type: varchar(36), primary: true }
  email: { type: text, unique: true, nullable: false }
posts:
  id: { type: varchar, primary: true }
  title:
    type: text
    nullable: false
    default: "Hello, World!"
  views: { type: integer, default: 0 }
  score: { type: real, default: 1.5 }
  published: { type: boolean, default: false }
  created_at: { type: timestamptz, default: !expr now() }
  author: { type: varchar, length: 36, references: users }
  body: text
tags:
`

func TestParseYAML(t *testing.T) {
	def, err := ParseYAML([]byte(blogYAML))
	require.NoError(t, err)

	require.Len(t, def.Tables, 3)
	assert.Equal(t, "users", def.Tables[0].Name)
	assert.Equal(t, "posts", def.Tables[1].Name)
	assert.Equal(t, "tags", def.Tables[2].Name)
	assert.Empty(t, def.Tables[2].Columns)

	assert.Equal(t, []schema.ColumnSpec{
		{Name: "id", Type: "varchar(36)", Primary: schema.Ptr(true)},
		{Name: "email", Type: "text", Unique: schema.Ptr(true), Nullable: schema.Ptr(false)},
	}, def.Tables[0].Columns)

	posts := def.Tables[1].Columns
	var names []string
	for _, c := range posts {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "title", "views", "score", "published", "created_at", "author", "body"}, names)

	assert.Equal(t, "Hello, World!", posts[1].Default)
	assert.Equal(t, int64(0), posts[2].Default)
	assert.Equal(t, 1.5, posts[3].Default)
	assert.Equal(t, false, posts[4].Default)
	assert.Equal(t, schema.Expression("now()"), posts[5].Default)
	assert.Equal(t, schema.ColumnSpec{Name: "author", Type: "varchar", Length: schema.Ptr(36), References: schema.Ptr("users")}, posts[6])
	assert.Equal(t, schema.Shorthand("body", "text"), posts[7])

	_, err = schema.New(def)
	require.NoError(t, err)
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"root is a list", "- posts\n", "mapping of table names"},
		{"table is a scalar", "posts: text\n", `table "posts" must be a mapping`},
		{"unknown attribute", "posts:\n  id: { type: text, size: 3 }\n", "unknown attribute"},
		{"non scalar default", "posts:\n  id: { type: text, default: [1, 2] }\n", "default must be a scalar"},
		{"numeric shorthand", "posts:\n  id: 5\n", "shorthand type must be a string"},
		{"bad bool", "posts:\n  id: { type: text, primary: maybe }\n", "primary"},
		{"malformed", "posts: [\n", "unmarshalling YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseYAML_Empty(t *testing.T) {
	def, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, def.Tables)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blogYAML), 0o644))

	def, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Len(t, def.Tables, 3)

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDumpYAML_RoundTrip(t *testing.T) {
	def, err := ParseYAML([]byte(blogYAML))
	require.NoError(t, err)
	want, err := schema.New(def)
	require.NoError(t, err)

	out, err := DumpYAML(want.Definition())
	require.NoError(t, err)
	assert.Contains(t, string(out), "body: text\n")
	assert.Contains(t, string(out), "!expr now()")

	reparsed, err := ParseYAML(out)
	require.NoError(t, err)
	got, err := schema.New(reparsed)
	require.NoError(t, err)

	assert.Equal(t, want.Definition(), got.Definition())
}

func TestDumpYAML_QuotesAmbiguousStrings(t *testing.T) {
	var def schema.Definition
	def.AddTable("flags", schema.ColumnSpec{Name: "state", Type: "text", Default: "true"})

	out, err := DumpYAML(def)
	require.NoError(t, err)

	back, err := ParseYAML(out)
	require.NoError(t, err)
	assert.Equal(t, "true", back.Tables[0].Columns[0].Default)
}

const models = `package models

import "time"

type User struct {
	ID    string ` + "`schemasync:\"type:varchar(36);primary\"`" + `
	Email string ` + "`schemasync:\"unique;not_null\"`" + `
	notes string ` + "`schemasync:\"type:text\"`" + `
}

type BlogPost struct {
	ID        int64     ` + "`schemasync:\"primary\"`" + `
	AuthorID  string    ` + "`schemasync:\"column:author;type:varchar;length:36;fk:users.id\"`" + `
	Status    string    ` + "`schemasync:\"default:draft\"`" + `
	CreatedAt time.Time ` + "`schemasync:\"default_expr:now()\"`" + `
	Internal  string    ` + "`schemasync:\"-\"`" + `
	Plain     string
}

type Options struct {
	Verbose bool
}
`

func TestLoadStructs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.go"), []byte(models), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# models"), 0o644))

	def, err := LoadStructs(dir)
	require.NoError(t, err)

	require.Len(t, def.Tables, 2)
	assert.Equal(t, schema.TableSpec{
		Name: "users",
		Columns: []schema.ColumnSpec{
			{Name: "id", Type: "varchar(36)", Primary: schema.Ptr(true)},
			{Name: "email", Type: "text", Unique: schema.Ptr(true), Nullable: schema.Ptr(false)},
		},
	}, def.Tables[0])
	assert.Equal(t, schema.TableSpec{
		Name: "blog_posts",
		Columns: []schema.ColumnSpec{
			{Name: "id", Type: "bigint", Primary: schema.Ptr(true)},
			{Name: "author", Type: "varchar", Length: schema.Ptr(36), References: schema.Ptr("users")},
			{Name: "status", Type: "text", Default: "draft"},
			{Name: "created_at", Type: "timestamptz", Default: schema.Expression("now()")},
		},
	}, def.Tables[1])
}

func TestLoadStructs_Errors(t *testing.T) {
	_, err := LoadStructs(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	src := "package models\n\ntype T struct {\n\tA string `schemasync:\"colour:red\"`\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.go"), []byte(src), 0o644))

	_, err = LoadStructs(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown key "colour"`)
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "user_id", toSnakeCase("UserID"))
	assert.Equal(t, "blog_posts", tableName("BlogPost"))
	assert.Equal(t, "categories", tableName("Category"))
	assert.Equal(t, "news", tableName("News"))
}
