package engine

import (
	"minidb/internal/catalog"
	"minidb/internal/parser"
	"minidb/internal/value"
)

// compositeRow is a partial join result: for every table joined in so far,
// its matching RID and full column map.
type compositeRow struct {
	rids map[string]int64
	cols map[string]map[string]value.Value
}

func (c compositeRow) extend(table string, rid int64, cols map[string]value.Value) compositeRow {
	nr := compositeRow{
		rids: make(map[string]int64, len(c.rids)+1),
		cols: make(map[string]map[string]value.Value, len(c.cols)+1),
	}
	for k, v := range c.rids {
		nr.rids[k] = v
	}
	for k, v := range c.cols {
		nr.cols[k] = v
	}
	nr.rids[table] = rid
	nr.cols[table] = cols
	return nr
}

type projCol struct {
	table, col, outName string
}

// performJoin combines the rows accumulated so far with newTable, applying
// newTable's own per-table literal predicates plus the cross-table equality
// from the JOIN clause's ON condition. Three plans are possible, checked in
// this order: if the new table's joined column is indexed, run a classic
// index-nested-loop (outer = accumulated rows, inner = newTable via index);
// otherwise, if the *other* side's column is indexed, reverse the loop:
// drive from newTable's own (usually small, already-filtered) candidate set
// and probe the earlier table's index for each row; otherwise fall back to
// plain nested loop over both candidate sets.
func (e *Engine) performJoin(composites []compositeRow, newTable string, left, right resolvedRef, innerPredicates []parser.Eq) ([]compositeRow, error) {
	var newSide, otherSide resolvedRef
	if left.Table == newTable {
		newSide, otherSide = left, right
	} else {
		newSide, otherSide = right, left
	}

	idxOnNew := e.cat.ListIndexesOn(newTable, newSide.Col)
	idxOnOther := e.cat.ListIndexesOn(otherSide.Table, otherSide.Col)

	switch {
	case len(idxOnNew) > 0:
		idx, err := e.indexFor(idxOnNew[0].Name)
		if err != nil {
			return nil, err
		}
		heapTbl, err := e.heapFor(newTable)
		if err != nil {
			return nil, err
		}
		var out []compositeRow
		for _, comp := range composites {
			outerVal := comp.cols[otherSide.Table][otherSide.Col]
			if outerVal.IsNull() {
				continue
			}
			for _, rid := range idx.Lookup(outerVal) {
				cols, ok, err := heapTbl.Get(rid)
				if err != nil {
					return nil, err
				}
				if !ok || !satisfies(cols, innerPredicates) {
					continue
				}
				out = append(out, comp.extend(newTable, rid, cols))
			}
		}
		return out, nil

	case len(idxOnOther) > 0:
		newRows, err := e.candidateRows(newTable, innerPredicates)
		if err != nil {
			return nil, err
		}
		idx, err := e.indexFor(idxOnOther[0].Name)
		if err != nil {
			return nil, err
		}
		byRid := make(map[int64][]compositeRow)
		for _, comp := range composites {
			if rid, ok := comp.rids[otherSide.Table]; ok {
				byRid[rid] = append(byRid[rid], comp)
			}
		}
		var out []compositeRow
		for _, nr := range newRows {
			val := nr.Row[newSide.Col]
			if val.IsNull() {
				continue
			}
			for _, rid := range idx.Lookup(val) {
				for _, comp := range byRid[rid] {
					out = append(out, comp.extend(newTable, nr.Rid, nr.Row))
				}
			}
		}
		return out, nil

	default:
		newRows, err := e.candidateRows(newTable, innerPredicates)
		if err != nil {
			return nil, err
		}
		var out []compositeRow
		for _, comp := range composites {
			outerVal := comp.cols[otherSide.Table][otherSide.Col]
			if outerVal.IsNull() {
				continue
			}
			for _, nr := range newRows {
				val := nr.Row[newSide.Col]
				if val.IsNull() {
					continue
				}
				if val.Equal(outerVal) {
					out = append(out, comp.extend(newTable, nr.Rid, nr.Row))
				}
			}
		}
		return out, nil
	}
}

func (e *Engine) handleSelect(sel *parser.Select) (Result, error) {
	participants := make([]string, 0, 1+len(sel.Joins))
	participants = append(participants, sel.From)
	for _, j := range sel.Joins {
		participants = append(participants, j.Table)
	}

	tables := make(map[string]*catalog.Table, len(participants))
	for _, p := range participants {
		t, ok := e.cat.LookupTable(p)
		if !ok {
			return nil, tableNotFound(p)
		}
		tables[p] = t
	}

	perTable, err := resolveWhere(sel.Where, participants, tables)
	if err != nil {
		return nil, err
	}

	proj, err := e.buildProjection(sel, participants, tables)
	if err != nil {
		return nil, err
	}

	driveRows, err := e.candidateRows(sel.From, perTable[sel.From])
	if err != nil {
		return nil, err
	}
	composites := make([]compositeRow, 0, len(driveRows))
	for _, r := range driveRows {
		composites = append(composites, compositeRow{
			rids: map[string]int64{sel.From: r.Rid},
			cols: map[string]map[string]value.Value{sel.From: r.Row},
		})
	}

	for _, j := range sel.Joins {
		left, err := resolveColRef(j.Left, participants, tables)
		if err != nil {
			return nil, err
		}
		right, err := resolveColRef(j.Right, participants, tables)
		if err != nil {
			return nil, err
		}
		composites, err = e.performJoin(composites, j.Table, left, right, perTable[j.Table])
		if err != nil {
			return nil, err
		}
	}

	cols := make([]string, len(proj))
	for i, p := range proj {
		cols[i] = p.outName
	}
	rows := make([][]value.Value, 0, len(composites))
	for _, comp := range composites {
		row := make([]value.Value, len(proj))
		for i, p := range proj {
			row[i] = comp.cols[p.table][p.col]
		}
		rows = append(rows, row)
	}

	return RowSet{Columns: cols, Rows: rows}, nil
}

// buildProjection resolves the SELECT's output column list. For `*`, an
// output name is qualified with its table whenever the same column name is
// declared by more than one participating table. For an explicit list, a
// reference written qualified keeps its table prefix and an unqualified one
// does not.
func (e *Engine) buildProjection(sel *parser.Select, participants []string, tables map[string]*catalog.Table) ([]projCol, error) {
	if sel.Star {
		nameCount := make(map[string]int)
		for _, p := range participants {
			for _, c := range tables[p].Columns {
				nameCount[c.Name]++
			}
		}
		var cols []projCol
		for _, p := range participants {
			for _, c := range tables[p].Columns {
				outName := c.Name
				if nameCount[c.Name] > 1 {
					outName = p + "." + c.Name
				}
				cols = append(cols, projCol{table: p, col: c.Name, outName: outName})
			}
		}
		return cols, nil
	}

	cols := make([]projCol, len(sel.Columns))
	for i, ref := range sel.Columns {
		resolved, err := resolveColRef(ref, participants, tables)
		if err != nil {
			return nil, err
		}
		outName := resolved.Col
		if ref.Table != "" {
			outName = resolved.Table + "." + resolved.Col
		}
		cols[i] = projCol{table: resolved.Table, col: resolved.Col, outName: outName}
	}
	return cols, nil
}
