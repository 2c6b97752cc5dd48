package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhases_CanonicalOrder(t *testing.T) {
	want := []Phase{
		"create.tables",
		"create.columns",
		"drop.foreignkeys",
		"drop.constraints",
		"alter.columns",
		"alter.constraints",
		"alter.foreignkeys",
		"create.constraints",
		"create.foreignkeys",
		"drop.columns",
		"drop.tables",
	}
	assert.Equal(t, want, Phases)
	assert.Equal(t, want, New().Phases())
}

func TestAddOperation_RoutesByKey(t *testing.T) {
	m := New()
	require.NoError(t, m.AddOperation(Operation{Target: Columns, Type: Drop, Name: "posts.title"}))
	require.NoError(t, m.AddOperation(Operation{Target: Tables, Type: Create, Name: "posts"}))
	require.NoError(t, m.AddOperation(Operation{Target: Columns, Type: Create, Name: "posts.id"}))
	require.NoError(t, m.AddOperation(Operation{Target: Columns, Type: Create, Name: "posts.body"}))

	var names []string
	for _, op := range m.Operations() {
		names = append(names, op.Name)
	}
	assert.Equal(t, []string{"posts", "posts.id", "posts.body", "posts.title"}, names)
	assert.Len(t, m.Bucket(CreateColumns), 2)
	assert.Equal(t, 4, m.Len())
	assert.False(t, m.Empty())
}

func TestAddOperation_UnknownKey(t *testing.T) {
	m := New()
	err := m.AddOperation(Operation{Target: Tables, Type: Alter, Name: "posts"})

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "alter.tables", cfgErr.Key)
	assert.True(t, m.Empty())
}

func TestReverse_InvertsPhasesNotOperations(t *testing.T) {
	m := New()
	require.NoError(t, m.AddOperation(Operation{Target: Tables, Type: Create, Name: "a"}))
	require.NoError(t, m.AddOperation(Operation{Target: Tables, Type: Create, Name: "b"}))
	require.NoError(t, m.AddOperation(Operation{Target: Tables, Type: Drop, Name: "c"}))

	m.Reverse()

	assert.True(t, m.Reversed())
	assert.Equal(t, DropTables, m.Phases()[0])
	assert.Equal(t, CreateTables, m.Phases()[len(Phases)-1])

	var names []string
	for _, op := range m.Operations() {
		names = append(names, op.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)

	m.Reverse()
	assert.Equal(t, Phases, m.Phases())
	assert.False(t, m.Reversed())
}

func TestReverse_DoesNotTouchCanonicalOrder(t *testing.T) {
	New().Reverse()
	assert.Equal(t, CreateTables, Phases[0])
}

func TestOperation_NameParts(t *testing.T) {
	op := Operation{Target: Columns, Type: Alter, Name: "posts.title"}
	assert.Equal(t, "posts", op.Table())
	assert.Equal(t, "title", op.Column())
	assert.Equal(t, "alter.columns", op.Key())

	table := Operation{Target: Tables, Type: Create, Name: "posts"}
	assert.Equal(t, "posts", table.Table())
	assert.Equal(t, "", table.Column())
}
