// Package migration groups operations into ordered phases.
//
// Each operation lands in the phase named by its type and target. Phases run
// in a fixed order so that tables exist before their columns, constraints are
// dropped before their columns, and columns are dropped before their tables.
package migration

import "fmt"

// Phase identifies one bucket of operations.
type Phase string

const (
	CreateTables      Phase = "create.tables"
	CreateColumns     Phase = "create.columns"
	DropForeignKeys   Phase = "drop.foreignkeys"
	DropConstraints   Phase = "drop.constraints"
	AlterColumns      Phase = "alter.columns"
	AlterConstraints  Phase = "alter.constraints"
	AlterForeignKeys  Phase = "alter.foreignkeys"
	CreateConstraints Phase = "create.constraints"
	CreateForeignKeys Phase = "create.foreignkeys"
	DropColumns       Phase = "drop.columns"
	DropTables        Phase = "drop.tables"
)

// Phases is the canonical execution order.
var Phases = []Phase{
	CreateTables,
	CreateColumns,
	DropForeignKeys,
	DropConstraints,
	AlterColumns,
	AlterConstraints,
	AlterForeignKeys,
	CreateConstraints,
	CreateForeignKeys,
	DropColumns,
	DropTables,
}

// PhaseOf returns the phase for an operation type and target.
func PhaseOf(typ Type, target Target) (Phase, bool) {
	p := Phase(string(typ) + "." + string(target))
	for _, known := range Phases {
		if known == p {
			return p, true
		}
	}
	return "", false
}

// ConfigurationError is returned for an operation whose type and target do
// not name a phase.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no migration phase for operation key %q", e.Key)
}

// Migration is an ordered, phase-bucketed set of operations.
type Migration struct {
	order    []Phase
	queues   map[Phase][]Operation
	reversed bool
}

// New returns an empty migration in canonical phase order.
func New() *Migration {
	return &Migration{
		order:  append([]Phase(nil), Phases...),
		queues: make(map[Phase][]Operation, len(Phases)),
	}
}

// AddOperation appends op to the end of its phase.
func (m *Migration) AddOperation(op Operation) error {
	phase, ok := PhaseOf(op.Type, op.Target)
	if !ok {
		return &ConfigurationError{Key: op.Key()}
	}
	m.queues[phase] = append(m.queues[phase], op)
	return nil
}

// Operations returns every operation, phase by phase in the current order.
func (m *Migration) Operations() []Operation {
	var ops []Operation
	for _, p := range m.order {
		ops = append(ops, m.queues[p]...)
	}
	return ops
}

// Bucket returns the operations of phase p in insertion order.
func (m *Migration) Bucket(p Phase) []Operation {
	return append([]Operation(nil), m.queues[p]...)
}

// Phases returns the current phase order.
func (m *Migration) Phases() []Phase {
	return append([]Phase(nil), m.order...)
}

// Reverse inverts the phase order in place, leaving each phase's operations
// untouched, and returns m.
func (m *Migration) Reverse() *Migration {
	for i, j := 0, len(m.order)-1; i < j; i, j = i+1, j-1 {
		m.order[i], m.order[j] = m.order[j], m.order[i]
	}
	m.reversed = !m.reversed
	return m
}

// Reversed reports whether the phase order is inverted.
func (m *Migration) Reversed() bool {
	return m.reversed
}

// Len returns the number of operations.
func (m *Migration) Len() int {
	n := 0
	for _, q := range m.queues {
		n += len(q)
	}
	return n
}

// Empty reports whether m has no operations.
func (m *Migration) Empty() bool {
	return m.Len() == 0
}
