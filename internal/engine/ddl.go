package engine

import (
	"minidb/internal/catalog"
	"minidb/internal/dberrors"
	"minidb/internal/parser"
)

func columnTypeFromAST(t parser.ColType) catalog.ColumnType {
	switch t.Name {
	case "INTEGER":
		return catalog.TypeInteger
	case "VARCHAR":
		return catalog.TypeVarchar
	case "TEXT":
		return catalog.TypeText
	case "DATE":
		return catalog.TypeDate
	case "BOOLEAN":
		return catalog.TypeBoolean
	default:
		return catalog.ColumnType(t.Name)
	}
}

func (e *Engine) handleCreateTable(s *parser.CreateTable) (Result, error) {
	cols := make([]*catalog.Column, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = &catalog.Column{
			Name:          c.Name,
			Type:          columnTypeFromAST(c.Type),
			VarcharLength: c.Type.Length,
			NotNull:       c.NotNull,
			Unique:        c.Unique,
			PrimaryKey:    c.PrimaryKey,
		}
	}
	if _, err := e.cat.CreateTable(s.Table, cols); err != nil {
		return nil, err
	}
	// Touch the heap so the table's files exist on disk even before its
	// first INSERT.
	if _, err := e.heapFor(s.Table); err != nil {
		return nil, err
	}
	return Ack{Kind: "CREATE_TABLE", Affected: 0}, nil
}

// handleCreateIndex scans every live row before registering the index: if a
// UNIQUE or PRIMARY_KEY column turns out to already hold duplicate non-NULL
// values, creation is refused and the catalog is left untouched. Otherwise
// the index is registered in the catalog and then populated from that scan.
func (e *Engine) handleCreateIndex(s *parser.CreateIndex) (Result, error) {
	tbl, ok := e.cat.LookupTable(s.Table)
	if !ok {
		return nil, &dberrors.CatalogError{Message: "unknown table", Table: s.Table}
	}
	col := tbl.FindColumn(s.Column)
	if col == nil {
		return nil, &dberrors.CatalogError{Message: "unknown column", Table: s.Table, Column: s.Column}
	}

	heapTbl, err := e.heapFor(s.Table)
	if err != nil {
		return nil, err
	}
	rows, err := heapTbl.Scan()
	if err != nil {
		return nil, err
	}

	if col.Unique || col.PrimaryKey {
		seen := make(map[string]bool, len(rows))
		for _, r := range rows {
			v := r.Row[s.Column]
			if v.IsNull() {
				continue
			}
			k := v.EncodeKey()
			if seen[k] {
				return nil, &dberrors.ConstraintError{Kind: constraintKindFor(col), Table: s.Table, Column: s.Column, Value: v.String()}
			}
			seen[k] = true
		}
	}

	meta, err := e.cat.CreateIndex(s.IndexName, s.Table, s.Column)
	if err != nil {
		return nil, err
	}
	idx, err := e.indexFor(meta.Name)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		idx.Insert(r.Row[s.Column], r.Rid)
	}
	if err := idx.Flush(); err != nil {
		return nil, err
	}
	return Ack{Kind: "CREATE_INDEX", Affected: 0}, nil
}

func constraintKindFor(c *catalog.Column) dberrors.ConstraintKind {
	if c.PrimaryKey {
		return dberrors.ConstraintPK
	}
	return dberrors.ConstraintUnique
}
