// Package minidb is the embedded relational engine's public entry point:
// Open a directory, Execute SQL text against it, Close it. Everything else
// (catalog, heap, index, executor) lives under internal/ and is reachable
// only through this facade.
package minidb

import (
	"path/filepath"
	"strings"

	"minidb/internal/catalog"
	"minidb/internal/config"
	"minidb/internal/dberrors"
	"minidb/internal/engine"
	"minidb/internal/parser"
	"minidb/internal/value"
)

// Re-exported so callers never need to import the internal packages that
// actually define these types.
type (
	Result = engine.Result
	RowSet = engine.RowSet
	Ack    = engine.Ack
	Value  = value.Value
)

// Database is one open handle onto a directory holding a catalog.json, a
// data/ directory of heap files, and an indexes/ directory of persisted
// index documents. Not safe for concurrent use: the caller must serialize
// calls into a single handle.
type Database struct {
	eng *engine.Engine
}

// Open opens dir as a minidb database, creating its catalog if dir has
// never been opened before. Configuration is read from dir/minidb.toml if
// present; Default() values apply otherwise.
func Open(dir string) (*Database, error) {
	cfg, err := config.Load(filepath.Join(dir, "minidb.toml"))
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(dir, cfg.Fsync)
	if err != nil {
		return nil, err
	}
	return &Database{eng: engine.New(dir, cat, cfg.Fsync)}, nil
}

// Execute parses sql (one or more ';'-separated statements) and runs each in
// order. The returned Result is that of the last statement; per-statement
// errors abort the remaining script and are returned as-is (LexError,
// ParseError, CatalogError, TypeError, ConstraintError, IOError, or
// NotImplementedError).
func (db *Database) Execute(sql string) (Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, &dberrors.ParseError{Expected: "a statement", Found: "empty input"}
	}
	stmts, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	var last Result
	for _, stmt := range stmts {
		last, err = db.eng.Execute(stmt)
		if err != nil {
			return nil, err
		}
	}
	return last, nil
}

// Close releases every open heap file handle.
func (db *Database) Close() error {
	return db.eng.Close()
}
