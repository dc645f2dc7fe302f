// Package engine is the statement executor: it dispatches each parsed
// statement to the operation that implements it, enforces the NOT_NULL / PK
// / UNIQUE constraint chain on INSERT and UPDATE, and plans SELECT and JOIN
// either as a full scan or, when a usable index exists, as an index probe or
// index-nested-loop. Dispatch-by-statement-kind with one method per
// operation and a uniform result type, plus a two-phase validate-then-commit
// discipline before any row is written, are the organizing ideas throughout.
package engine

import (
	"minidb/internal/catalog"
	"minidb/internal/dberrors"
	"minidb/internal/heap"
	"minidb/internal/index"
	"minidb/internal/parser"
)

// Engine owns one open database directory: its catalog, and lazily-opened
// heap and index handles. Not safe for concurrent use; the caller must
// serialize calls into a single Engine.
type Engine struct {
	dir     string
	fsync   bool
	cat     *catalog.Catalog
	heaps   map[string]*heap.Table
	indexes map[string]*index.Index
}

// New wraps an already-open catalog with an executor. dir is the database
// directory the catalog itself was opened from; fsync is forwarded to every
// heap and index handle this engine lazily opens.
func New(dir string, cat *catalog.Catalog, fsync bool) *Engine {
	return &Engine{
		dir:     dir,
		fsync:   fsync,
		cat:     cat,
		heaps:   make(map[string]*heap.Table),
		indexes: make(map[string]*index.Index),
	}
}

func (e *Engine) heapFor(table string) (*heap.Table, error) {
	if h, ok := e.heaps[table]; ok {
		return h, nil
	}
	h, err := heap.Open(e.dir, table, e.fsync)
	if err != nil {
		return nil, err
	}
	e.heaps[table] = h
	return h, nil
}

func (e *Engine) indexFor(name string) (*index.Index, error) {
	if idx, ok := e.indexes[name]; ok {
		return idx, nil
	}
	idx, err := index.Open(e.dir, name, e.fsync)
	if err != nil {
		return nil, err
	}
	e.indexes[name] = idx
	return idx, nil
}

// Execute runs one parsed statement and returns its result.
func (e *Engine) Execute(stmt parser.Stmt) (Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateTable:
		return e.handleCreateTable(s)
	case *parser.CreateIndex:
		return e.handleCreateIndex(s)
	case *parser.Insert:
		return e.handleInsert(s)
	case *parser.Select:
		return e.handleSelect(s)
	case *parser.Update:
		return e.handleUpdate(s)
	case *parser.Delete:
		return e.handleDelete(s)
	default:
		return nil, &dberrors.NotImplementedError{Feature: "unknown statement kind"}
	}
}

// Close releases every heap file handle opened by this engine. Index
// handles need no explicit close: they are flushed on demand and hold no
// open file descriptor between statements.
func (e *Engine) Close() error {
	var firstErr error
	for _, h := range e.heaps {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
