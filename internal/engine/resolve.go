package engine

import (
	"minidb/internal/catalog"
	"minidb/internal/dberrors"
	"minidb/internal/heap"
	"minidb/internal/parser"
	"minidb/internal/value"
)

// resolvedRef is a column reference pinned down to exactly one participating
// table, after qualification/ambiguity resolution.
type resolvedRef struct {
	Table string
	Col   string
}

// resolveColRef pins ref to one of participants. A qualified reference must
// name a participating table that declares the column. An unqualified
// reference must be declared by exactly one participant; zero or more than
// one is an error (unknown or ambiguous column).
func resolveColRef(ref parser.ColRef, participants []string, tables map[string]*catalog.Table) (resolvedRef, error) {
	if ref.Table != "" {
		t, ok := tables[ref.Table]
		if !ok {
			return resolvedRef{}, &dberrors.CatalogError{Message: "unknown table in column reference", Table: ref.Table}
		}
		if t.FindColumn(ref.Col) == nil {
			return resolvedRef{}, &dberrors.CatalogError{Message: "unknown column", Table: ref.Table, Column: ref.Col}
		}
		return resolvedRef{Table: ref.Table, Col: ref.Col}, nil
	}

	var matches []string
	for _, p := range participants {
		if tables[p].FindColumn(ref.Col) != nil {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return resolvedRef{}, &dberrors.CatalogError{Message: "unknown column", Column: ref.Col}
	case 1:
		return resolvedRef{Table: matches[0], Col: ref.Col}, nil
	default:
		return resolvedRef{}, &dberrors.CatalogError{Message: "ambiguous column reference", Column: ref.Col}
	}
}

// resolveWhere groups a WHERE clause's equality conjuncts by the single
// table each resolves to. The grammar only allows col_ref = literal, so
// every WHERE conjunct is necessarily single-table; cross-table conditions
// can only appear in a JOIN's ON clause.
func resolveWhere(where []parser.Eq, participants []string, tables map[string]*catalog.Table) (map[string][]parser.Eq, error) {
	perTable := make(map[string][]parser.Eq)
	for _, eq := range where {
		ref, err := resolveColRef(eq.Col, participants, tables)
		if err != nil {
			return nil, err
		}
		perTable[ref.Table] = append(perTable[ref.Table], parser.Eq{Col: parser.ColRef{Table: ref.Table, Col: ref.Col}, Value: eq.Value})
	}
	return perTable, nil
}

// eqMatch implements the engine's equality comparison: a literal NULL
// matches only a NULL cell, and a non-NULL literal never matches a NULL
// cell. Full three-valued SQL NULL semantics are out of scope (DESIGN.md).
func eqMatch(v, literal value.Value) bool {
	if literal.IsNull() {
		return v.IsNull()
	}
	if v.IsNull() {
		return false
	}
	return v.Equal(literal)
}

func satisfies(row map[string]value.Value, eqs []parser.Eq) bool {
	for _, eq := range eqs {
		if !eqMatch(row[eq.Col.Col], eq.Value) {
			return false
		}
	}
	return true
}

func filterScanned(rows []heap.ScannedRow, eqs []parser.Eq) []heap.ScannedRow {
	if len(eqs) == 0 {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if satisfies(r.Row, eqs) {
			out = append(out, r)
		}
	}
	return out
}

// candidateRows plans and evaluates a single table's own literal predicates:
// if one of them compares an indexed column with a non-NULL literal, probe
// the index and apply the remaining predicates to the hits; otherwise fall
// back to a full scan filtered by every predicate. (The index stores no NULL
// keys, so a `col = NULL` predicate is always answered by the scan.)
func (e *Engine) candidateRows(table string, predicates []parser.Eq) ([]heap.ScannedRow, error) {
	heapTbl, err := e.heapFor(table)
	if err != nil {
		return nil, err
	}

	for i, eq := range predicates {
		if eq.Value.IsNull() {
			continue
		}
		idxs := e.cat.ListIndexesOn(table, eq.Col.Col)
		if len(idxs) == 0 {
			continue
		}
		idx, err := e.indexFor(idxs[0].Name)
		if err != nil {
			return nil, err
		}
		var rows []heap.ScannedRow
		for _, rid := range idx.Lookup(eq.Value) {
			cols, ok, err := heapTbl.Get(rid)
			if err != nil {
				return nil, err
			}
			if ok {
				rows = append(rows, heap.ScannedRow{Rid: rid, Row: cols})
			}
		}
		remaining := append(append([]parser.Eq{}, predicates[:i]...), predicates[i+1:]...)
		return filterScanned(rows, remaining), nil
	}

	all, err := heapTbl.Scan()
	if err != nil {
		return nil, err
	}
	return filterScanned(all, predicates), nil
}
