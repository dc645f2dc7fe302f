package engine

import "minidb/internal/dberrors"

func tableNotFound(table string) error {
	return &dberrors.CatalogError{Message: "unknown table", Table: table}
}
