package engine

import (
	"minidb/internal/catalog"
	"minidb/internal/dberrors"
	"minidb/internal/index"
	"minidb/internal/parser"
	"minidb/internal/value"
)

// valueExistsExcluding reports whether any live row of table other than one
// of exclude's RIDs already holds v in col: an indexed uniqueness probe when
// col has an index, a full scan otherwise.
func (e *Engine) valueExistsExcluding(table string, col *catalog.Column, v value.Value, exclude map[int64]bool) (bool, error) {
	idxs := e.cat.ListIndexesOn(table, col.Name)
	if len(idxs) > 0 {
		idx, err := e.indexFor(idxs[0].Name)
		if err != nil {
			return false, err
		}
		for _, rid := range idx.Lookup(v) {
			if !exclude[rid] {
				return true, nil
			}
		}
		return false, nil
	}

	heapTbl, err := e.heapFor(table)
	if err != nil {
		return false, err
	}
	rows, err := heapTbl.Scan()
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if exclude[r.Rid] {
			continue
		}
		if val := r.Row[col.Name]; !val.IsNull() && val.Equal(v) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) handleInsert(s *parser.Insert) (Result, error) {
	tbl, ok := e.cat.LookupTable(s.Table)
	if !ok {
		return nil, tableNotFound(s.Table)
	}

	row := make(map[string]value.Value, len(tbl.Columns))
	for _, c := range tbl.Columns {
		row[c.Name] = value.Null
	}
	for i, colName := range s.Columns {
		if tbl.FindColumn(colName) == nil {
			return nil, &dberrors.CatalogError{Message: "unknown column", Table: s.Table, Column: colName}
		}
		row[colName] = s.Values[i]
	}

	for _, c := range tbl.Columns {
		if err := catalog.CheckValueType(s.Table, c, row[c.Name]); err != nil {
			return nil, err
		}
	}
	for _, c := range tbl.Columns {
		if c.NotNull && row[c.Name].IsNull() {
			return nil, &dberrors.ConstraintError{Kind: dberrors.ConstraintNotNull, Table: s.Table, Column: c.Name}
		}
	}
	for _, c := range tbl.Columns {
		if !c.Unique && !c.PrimaryKey {
			continue
		}
		v := row[c.Name]
		if v.IsNull() {
			continue
		}
		exists, err := e.valueExistsExcluding(s.Table, c, v, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &dberrors.ConstraintError{Kind: constraintKindFor(c), Table: s.Table, Column: c.Name, Value: v.String()}
		}
	}

	heapTbl, err := e.heapFor(s.Table)
	if err != nil {
		return nil, err
	}
	rid, err := e.cat.BumpNextRid(s.Table)
	if err != nil {
		return nil, err
	}
	if err := heapTbl.AppendRow(rid, row); err != nil {
		return nil, err
	}

	for _, m := range e.cat.ListIndexes(s.Table) {
		v := row[m.Column]
		if v.IsNull() {
			continue
		}
		idx, err := e.indexFor(m.Name)
		if err != nil {
			return nil, err
		}
		idx.Insert(v, rid)
		if err := idx.Flush(); err != nil {
			return nil, err
		}
	}

	return Ack{Kind: "INSERT", Affected: 1}, nil
}

// handleUpdate replaces each matched row with a fresh RID (updates never
// rewrite a heap record in place), validating the whole prospective batch
// (types, then NOT_NULL, then PK/UNIQUE against both the rest of the batch
// and the rest of the live table) before committing any of it.
func (e *Engine) handleUpdate(s *parser.Update) (Result, error) {
	tbl, ok := e.cat.LookupTable(s.Table)
	if !ok {
		return nil, tableNotFound(s.Table)
	}
	for _, a := range s.Assigns {
		if tbl.FindColumn(a.Column) == nil {
			return nil, &dberrors.CatalogError{Message: "unknown column", Table: s.Table, Column: a.Column}
		}
	}

	perTable, err := resolveWhere(s.Where, []string{s.Table}, map[string]*catalog.Table{s.Table: tbl})
	if err != nil {
		return nil, err
	}
	candidates, err := e.candidateRows(s.Table, perTable[s.Table])
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return Ack{Kind: "UPDATE", Affected: 0}, nil
	}

	type prospect struct {
		oldRid int64
		oldRow map[string]value.Value
		newRow map[string]value.Value
	}
	prospects := make([]prospect, len(candidates))
	excludeRids := make(map[int64]bool, len(candidates))
	for i, c := range candidates {
		newRow := make(map[string]value.Value, len(c.Row))
		for k, v := range c.Row {
			newRow[k] = v
		}
		for _, a := range s.Assigns {
			newRow[a.Column] = a.Value
		}
		prospects[i] = prospect{oldRid: c.Rid, oldRow: c.Row, newRow: newRow}
		excludeRids[c.Rid] = true
	}

	for _, c := range tbl.Columns {
		for _, p := range prospects {
			if err := catalog.CheckValueType(s.Table, c, p.newRow[c.Name]); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range tbl.Columns {
		if !c.NotNull {
			continue
		}
		for _, p := range prospects {
			if p.newRow[c.Name].IsNull() {
				return nil, &dberrors.ConstraintError{Kind: dberrors.ConstraintNotNull, Table: s.Table, Column: c.Name}
			}
		}
	}
	for _, c := range tbl.Columns {
		if !c.Unique && !c.PrimaryKey {
			continue
		}
		seenInBatch := make(map[string]bool)
		for _, p := range prospects {
			v := p.newRow[c.Name]
			if v.IsNull() {
				continue
			}
			k := v.EncodeKey()
			if seenInBatch[k] {
				return nil, &dberrors.ConstraintError{Kind: constraintKindFor(c), Table: s.Table, Column: c.Name, Value: v.String()}
			}
			seenInBatch[k] = true
			exists, err := e.valueExistsExcluding(s.Table, c, v, excludeRids)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, &dberrors.ConstraintError{Kind: constraintKindFor(c), Table: s.Table, Column: c.Name, Value: v.String()}
			}
		}
	}

	heapTbl, err := e.heapFor(s.Table)
	if err != nil {
		return nil, err
	}
	idxMetas := e.cat.ListIndexes(s.Table)
	idxHandles := make(map[string]*index.Index, len(idxMetas))
	for _, m := range idxMetas {
		idx, err := e.indexFor(m.Name)
		if err != nil {
			return nil, err
		}
		idxHandles[m.Name] = idx
	}

	for _, p := range prospects {
		for _, m := range idxMetas {
			if oldVal := p.oldRow[m.Column]; !oldVal.IsNull() {
				idxHandles[m.Name].Remove(oldVal, p.oldRid)
			}
		}
		newRid, err := e.cat.BumpNextRid(s.Table)
		if err != nil {
			return nil, err
		}
		if err := heapTbl.AppendRow(newRid, p.newRow); err != nil {
			return nil, err
		}
		if err := heapTbl.AppendTombstone(p.oldRid); err != nil {
			return nil, err
		}
		for _, m := range idxMetas {
			if newVal := p.newRow[m.Column]; !newVal.IsNull() {
				idxHandles[m.Name].Insert(newVal, newRid)
			}
		}
	}
	for _, m := range idxMetas {
		if err := idxHandles[m.Name].Flush(); err != nil {
			return nil, err
		}
	}

	return Ack{Kind: "UPDATE", Affected: len(prospects)}, nil
}

func (e *Engine) handleDelete(s *parser.Delete) (Result, error) {
	tbl, ok := e.cat.LookupTable(s.Table)
	if !ok {
		return nil, tableNotFound(s.Table)
	}
	perTable, err := resolveWhere(s.Where, []string{s.Table}, map[string]*catalog.Table{s.Table: tbl})
	if err != nil {
		return nil, err
	}
	candidates, err := e.candidateRows(s.Table, perTable[s.Table])
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return Ack{Kind: "DELETE", Affected: 0}, nil
	}

	heapTbl, err := e.heapFor(s.Table)
	if err != nil {
		return nil, err
	}
	idxMetas := e.cat.ListIndexes(s.Table)
	idxHandles := make(map[string]*index.Index, len(idxMetas))
	for _, m := range idxMetas {
		idx, err := e.indexFor(m.Name)
		if err != nil {
			return nil, err
		}
		idxHandles[m.Name] = idx
	}

	for _, c := range candidates {
		if err := heapTbl.AppendTombstone(c.Rid); err != nil {
			return nil, err
		}
		for _, m := range idxMetas {
			if v := c.Row[m.Column]; !v.IsNull() {
				idxHandles[m.Name].Remove(v, c.Rid)
			}
		}
	}
	for _, m := range idxMetas {
		if err := idxHandles[m.Name].Flush(); err != nil {
			return nil, err
		}
	}

	return Ack{Kind: "DELETE", Affected: len(candidates)}, nil
}
