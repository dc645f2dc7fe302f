package catalog

import (
	"minidb/internal/dberrors"
)

// validateCreateTable checks structural correctness of a CREATE TABLE
// request before it is admitted to the catalog: duplicate column names,
// unsupported types, a negative VARCHAR length, and more than one
// PRIMARY_KEY column.
func validateCreateTable(name string, cols []*Column) error {
	if len(cols) == 0 {
		return &dberrors.CatalogError{Message: "table has no columns", Table: name}
	}

	seen := make(map[string]bool, len(cols))
	pkCount := 0
	for _, c := range cols {
		if seen[c.Name] {
			return &dberrors.CatalogError{Message: "duplicate column name", Table: name, Column: c.Name}
		}
		seen[c.Name] = true

		if err := validateColumnType(name, c); err != nil {
			return err
		}

		if c.PrimaryKey {
			pkCount++
		}
	}

	if pkCount > 1 {
		return &dberrors.CatalogError{Message: "at most one PRIMARY KEY column is allowed", Table: name}
	}

	return nil
}

func validateColumnType(table string, c *Column) error {
	switch c.Type {
	case TypeInteger, TypeText, TypeDate, TypeBoolean:
		return nil
	case TypeVarchar:
		if c.VarcharLength < 0 {
			return &dberrors.CatalogError{Message: "VARCHAR length must be >= 0", Table: table, Column: c.Name}
		}
		return nil
	default:
		return &dberrors.CatalogError{Message: "unsupported column type " + string(c.Type), Table: table, Column: c.Name}
	}
}

// normalizePrimaryKey enforces that PRIMARY_KEY implies NOT_NULL and UNIQUE,
// so downstream constraint checks never have to special-case PK separately
// from the other two flags.
func normalizePrimaryKey(cols []*Column) {
	for _, c := range cols {
		if c.PrimaryKey {
			c.NotNull = true
			c.Unique = true
		}
	}
}
