// Package index implements a persisted equality hash index: a document
// mapping a type-tagged value key to the set of RIDs currently indexing
// that value. Mutations are buffered in memory and written out via Flush;
// the executor calls Flush once per statement rather than after every
// individual Insert/Remove.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"minidb/internal/atomicfile"
	"minidb/internal/dberrors"
	"minidb/internal/value"
)

// Index is an open handle onto one indexes/<name>.json document.
type Index struct {
	name  string
	path  string
	fsync bool
	data  map[string][]int64 // encoded value key -> RIDs, insertion order preserved
}

// Open loads (or initializes empty) the index document named name inside
// dbDir/indexes. fsync controls whether Flush's rewrite calls Sync
// (minidb.toml's `fsync` setting).
func Open(dbDir, name string, fsync bool) (*Index, error) {
	idxDir := filepath.Join(dbDir, "indexes")
	if err := os.MkdirAll(idxDir, 0o755); err != nil {
		return nil, &dberrors.IOError{Op: "mkdir", Path: idxDir, Err: err}
	}
	path := filepath.Join(idxDir, name+".json")
	idx := &Index{name: name, path: path, fsync: fsync, data: make(map[string][]int64)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, &dberrors.IOError{Op: "read", Path: path, Err: err}
	}
	if err := json.Unmarshal(raw, &idx.data); err != nil {
		return nil, &dberrors.IOError{Op: "parse", Path: path, Err: err}
	}
	return idx, nil
}

// Insert adds rid under key's encoded value. A NULL key is ignored, so the
// index never stores NULL.
func (idx *Index) Insert(key value.Value, rid int64) {
	if key.IsNull() {
		return
	}
	k := key.EncodeKey()
	for _, existing := range idx.data[k] {
		if existing == rid {
			return
		}
	}
	idx.data[k] = append(idx.data[k], rid)
}

// Remove deletes rid from key's bucket, if present.
func (idx *Index) Remove(key value.Value, rid int64) {
	if key.IsNull() {
		return
	}
	k := key.EncodeKey()
	rids := idx.data[k]
	for i, existing := range rids {
		if existing == rid {
			idx.data[k] = append(rids[:i], rids[i+1:]...)
			break
		}
	}
	if len(idx.data[k]) == 0 {
		delete(idx.data, k)
	}
}

// Lookup returns the RIDs currently indexed under key, in insertion order.
func (idx *Index) Lookup(key value.Value) []int64 {
	if key.IsNull() {
		return nil
	}
	return idx.data[key.EncodeKey()]
}

// Contains reports whether any RID is indexed under key. The executor's
// uniqueness probes use Lookup instead, so that they can skip the RIDs an
// UPDATE is replacing.
func (idx *Index) Contains(key value.Value) bool {
	return len(idx.Lookup(key)) > 0
}

// Flush rewrites the index document atomically. Called once at the end of
// each statement that mutated the index.
func (idx *Index) Flush() error {
	// Sort keys for deterministic on-disk output; order has no semantic
	// meaning, only RID order within a bucket does.
	keys := make([]string, 0, len(idx.data))
	for k := range idx.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string][]int64, len(idx.data))
	for _, k := range keys {
		ordered[k] = idx.data[k]
	}

	data, err := json.Marshal(ordered)
	if err != nil {
		return fmt.Errorf("marshal index %s: %w", idx.name, err)
	}
	return atomicfile.Write(idx.path, data, idx.fsync)
}
