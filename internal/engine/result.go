package engine

import "minidb/internal/value"

// Result is the discriminated union an executed statement yields: either a
// RowSet (SELECT) or an Ack (every other statement kind).
type Result interface{ result() }

// RowSet is the result of a SELECT: column headers in projection order, and
// one slice of cells per matched row, in plan iteration order.
type RowSet struct {
	Columns []string
	Rows    [][]value.Value
}

func (RowSet) result() {}

// Ack is the result of a DDL or DML statement that does not produce rows.
// Kind names the statement (CREATE_TABLE, CREATE_INDEX, INSERT, UPDATE,
// DELETE); Affected counts rows touched (always 0 for DDL).
type Ack struct {
	Kind     string
	Affected int
}

func (Ack) result() {}
