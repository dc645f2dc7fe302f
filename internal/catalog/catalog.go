package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"minidb/internal/atomicfile"
	"minidb/internal/dberrors"
)

// Catalog is the single source of truth for schema metadata, loaded on open
// and rewritten atomically (write-temp, rename) after every DDL statement or
// next_rid advance.
type Catalog struct {
	mu      sync.Mutex
	path    string
	fsync   bool
	tables  map[string]*Table
	indexes map[string]*Index
}

// Open loads dir/catalog.json, or initializes an empty catalog document if
// the file does not yet exist (first open of a fresh directory). fsync
// controls whether each rewrite is followed by an fsync (minidb.toml's
// `fsync` setting).
func Open(dir string, fsync bool) (*Catalog, error) {
	path := filepath.Join(dir, "catalog.json")
	c := &Catalog{
		path:    path,
		fsync:   fsync,
		tables:  make(map[string]*Table),
		indexes: make(map[string]*Index),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, &dberrors.IOError{Op: "read", Path: path, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &dberrors.IOError{Op: "parse", Path: path, Err: err}
	}
	for _, t := range doc.Tables {
		c.tables[t.Name] = t
	}
	for _, idx := range doc.Indexes {
		c.indexes[idx.Name] = idx
	}
	return c, nil
}

// persist rewrites the catalog document atomically via atomicfile.Write.
func (c *Catalog) persist() error {
	doc := document{}
	for _, t := range c.tables {
		doc.Tables = append(doc.Tables, t)
	}
	for _, idx := range c.indexes {
		doc.Indexes = append(doc.Indexes, idx)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return atomicfile.Write(c.path, data, c.fsync)
}

// CreateTable validates and admits a new table definition, persisting the
// catalog before returning.
func (c *Catalog) CreateTable(name string, cols []*Column) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return nil, &dberrors.CatalogError{Message: "table already exists", Table: name}
	}
	if err := validateCreateTable(name, cols); err != nil {
		return nil, err
	}
	normalizePrimaryKey(cols)

	t := &Table{Name: name, Columns: cols}
	c.tables[name] = t
	if err := c.persist(); err != nil {
		delete(c.tables, name)
		return nil, err
	}
	return t, nil
}

// CreateIndex validates and registers a new index's metadata. It does not
// populate the index from existing rows; the executor does that, since the
// catalog has no access to the heap.
func (c *Catalog) CreateIndex(name, table, column string) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.indexes[name]; exists {
		return nil, &dberrors.CatalogError{Message: "index already exists", Table: table, Column: name}
	}
	t, ok := c.tables[table]
	if !ok {
		return nil, &dberrors.CatalogError{Message: "unknown table", Table: table}
	}
	if t.FindColumn(column) == nil {
		return nil, &dberrors.CatalogError{Message: "unknown column", Table: table, Column: column}
	}

	idx := &Index{Name: name, Table: table, Column: column}
	c.indexes[name] = idx
	if err := c.persist(); err != nil {
		delete(c.indexes, name)
		return nil, err
	}
	return idx, nil
}

// LookupTable returns the table named name, or (nil, false) if unknown.
func (c *Catalog) LookupTable(name string) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[name]
	return t, ok
}

// LookupIndex returns the index named name, or (nil, false) if unknown.
func (c *Catalog) LookupIndex(name string) (*Index, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.indexes[name]
	return idx, ok
}

// ListIndexes returns every index defined on table, in no particular order.
func (c *Catalog) ListIndexes(table string) []*Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Index
	for _, idx := range c.indexes {
		if idx.Table == table {
			out = append(out, idx)
		}
	}
	return out
}

// ListIndexesOn returns every index defined on table's column (at most one
// for a realistic schema, but the engine does not enforce that here).
func (c *Catalog) ListIndexesOn(table, column string) []*Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Index
	for _, idx := range c.indexes {
		if idx.Table == table && idx.Column == column {
			out = append(out, idx)
		}
	}
	return out
}

// BumpNextRid allocates and returns the next RID for table, persisting the
// advanced counter before returning it. This is the only way a RID is
// minted, so RIDs are never reused.
func (c *Catalog) BumpNextRid(table string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[table]
	if !ok {
		return 0, &dberrors.CatalogError{Message: "unknown table", Table: table}
	}
	rid := t.NextRid
	t.NextRid++
	if err := c.persist(); err != nil {
		t.NextRid--
		return 0, err
	}
	return rid, nil
}
