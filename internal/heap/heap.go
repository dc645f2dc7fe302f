// Package heap implements the append-only row log plus its RID directory
// and tombstone set: data/<t>.jsonl, data/<t>.dir, and data/<t>.tomb. The
// durability discipline is write, fsync, then update the directory, so with
// fsync enabled a crash can never leave a directory entry pointing at a row
// that was never durably written.
package heap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"minidb/internal/atomicfile"
	"minidb/internal/dberrors"
	"minidb/internal/rowcodec"
	"minidb/internal/value"
)

// Table is an open handle onto one table's three on-disk artifacts. It is
// not safe for concurrent use; the caller must serialize calls into the
// engine.
type Table struct {
	name  string
	fsync bool

	heapPath string
	dirPath  string
	tombPath string

	heapFile   *os.File
	nextOffset int64

	directory  map[int64]int64 // rid -> byte offset of its append_row record
	order      []int64         // insertion order, for deterministic Scan
	tombstones map[int64]bool
}

// Open opens (creating if absent) the three files backing table `name`
// inside dbDir/data, and loads the directory and tombstone set into memory.
// fsync controls whether heap writes and directory/tombstone rewrites call
// Sync (minidb.toml's `fsync` setting).
func Open(dbDir, name string, fsync bool) (*Table, error) {
	dataDir := filepath.Join(dbDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &dberrors.IOError{Op: "mkdir", Path: dataDir, Err: err}
	}

	t := &Table{
		name:       name,
		fsync:      fsync,
		heapPath:   filepath.Join(dataDir, name+".jsonl"),
		dirPath:    filepath.Join(dataDir, name+".dir"),
		tombPath:   filepath.Join(dataDir, name+".tomb"),
		directory:  make(map[int64]int64),
		tombstones: make(map[int64]bool),
	}

	if err := t.loadDirectory(); err != nil {
		return nil, err
	}
	if err := t.loadTombstones(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(t.heapPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &dberrors.IOError{Op: "open", Path: t.heapPath, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &dberrors.IOError{Op: "stat", Path: t.heapPath, Err: err}
	}
	t.heapFile = f
	t.nextOffset = info.Size()
	return t, nil
}

func (t *Table) loadDirectory() error {
	data, err := os.ReadFile(t.dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &dberrors.IOError{Op: "read", Path: t.dirPath, Err: err}
	}
	var doc struct {
		Order   []int64         `json:"order"`
		Offsets map[string]int64 `json:"offsets"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &dberrors.IOError{Op: "parse", Path: t.dirPath, Err: err}
	}
	for _, rid := range doc.Order {
		if offset, ok := doc.Offsets[ridKey(rid)]; ok {
			t.directory[rid] = offset
			t.order = append(t.order, rid)
		}
	}
	return nil
}

func (t *Table) persistDirectory() error {
	offsets := make(map[string]int64, len(t.directory))
	for rid, offset := range t.directory {
		offsets[ridKey(rid)] = offset
	}
	doc := struct {
		Order   []int64          `json:"order"`
		Offsets map[string]int64 `json:"offsets"`
	}{Order: t.order, Offsets: offsets}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal directory: %w", err)
	}
	return atomicfile.Write(t.dirPath, data, t.fsync)
}

func (t *Table) loadTombstones() error {
	data, err := os.ReadFile(t.tombPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &dberrors.IOError{Op: "read", Path: t.tombPath, Err: err}
	}
	var rids []int64
	if err := json.Unmarshal(data, &rids); err != nil {
		return &dberrors.IOError{Op: "parse", Path: t.tombPath, Err: err}
	}
	for _, rid := range rids {
		t.tombstones[rid] = true
	}
	return nil
}

func (t *Table) persistTombstones() error {
	rids := make([]int64, 0, len(t.tombstones))
	for rid := range t.tombstones {
		rids = append(rids, rid)
	}
	data, err := json.Marshal(rids)
	if err != nil {
		return fmt.Errorf("marshal tombstones: %w", err)
	}
	return atomicfile.Write(t.tombPath, data, t.fsync)
}

func ridKey(rid int64) string { return fmt.Sprintf("%d", rid) }

// AppendRow durably appends a new live row under the given rid (allocated by
// the caller via the catalog's next_rid counter) and records its offset in
// the directory. The heap record is written and fsynced before the
// directory is updated, so a crash between the two leaves no directory
// entry for a record that might not exist.
func (t *Table) AppendRow(rid int64, cols map[string]value.Value) error {
	buf, err := rowcodec.Encode(rowcodec.Row{Rid: rid, Cols: cols})
	if err != nil {
		return err
	}
	offset := t.nextOffset
	if err := t.write(buf); err != nil {
		return err
	}

	t.directory[rid] = offset
	t.order = append(t.order, rid)
	if err := t.persistDirectory(); err != nil {
		delete(t.directory, rid)
		t.order = t.order[:len(t.order)-1]
		return err
	}
	return nil
}

// AppendTombstone marks rid logically deleted: it appends a tombstone
// record to the heap (for an on-disk audit trail) and adds rid to the
// persisted tombstone set. rid must already have a directory entry from a
// prior AppendRow.
func (t *Table) AppendTombstone(rid int64) error {
	buf, err := rowcodec.Encode(rowcodec.Tombstone(rid))
	if err != nil {
		return err
	}
	if err := t.write(buf); err != nil {
		return err
	}

	t.tombstones[rid] = true
	if err := t.persistTombstones(); err != nil {
		delete(t.tombstones, rid)
		return err
	}
	return nil
}

func (t *Table) write(buf []byte) error {
	n, err := t.heapFile.Write(buf)
	if err != nil {
		return &dberrors.IOError{Op: "write", Path: t.heapPath, Err: err}
	}
	if t.fsync {
		if err := t.heapFile.Sync(); err != nil {
			return &dberrors.IOError{Op: "fsync", Path: t.heapPath, Err: err}
		}
	}
	t.nextOffset += int64(n)
	return nil
}

// isLive reports whether rid is in the directory and not tombstoned.
func (t *Table) isLive(rid int64) bool {
	_, present := t.directory[rid]
	return present && !t.tombstones[rid]
}

// readAt performs a random-access read of the record stored at offset,
// without rescanning the heap from the start.
func (t *Table) readAt(offset int64) (rowcodec.Row, error) {
	f, err := os.Open(t.heapPath)
	if err != nil {
		return rowcodec.Row{}, &dberrors.IOError{Op: "open", Path: t.heapPath, Err: err}
	}
	defer f.Close()

	if _, err := f.Seek(offset, 0); err != nil {
		return rowcodec.Row{}, &dberrors.IOError{Op: "seek", Path: t.heapPath, Err: err}
	}
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return rowcodec.Row{}, &dberrors.IOError{Op: "read", Path: t.heapPath, Err: err}
	}
	line = trimLF(line)
	return rowcodec.Decode([]byte(line))
}

func trimLF(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s[:len(s)-1]
	}
	return s
}

// Get returns the live row for rid, or (nil, false) if rid is absent,
// tombstoned, or the stored record is itself a tombstone marker.
func (t *Table) Get(rid int64) (map[string]value.Value, bool, error) {
	offset, present := t.directory[rid]
	if !present || t.tombstones[rid] {
		return nil, false, nil
	}
	row, err := t.readAt(offset)
	if err != nil {
		return nil, false, err
	}
	if row.Op == rowcodec.OpDelete {
		return nil, false, nil
	}
	return row.Cols, true, nil
}

// ScannedRow is one live row yielded by Scan, paired with its RID.
type ScannedRow struct {
	Rid int64
	Row map[string]value.Value
}

// Scan enumerates every live row in directory (insertion) order.
func (t *Table) Scan() ([]ScannedRow, error) {
	out := make([]ScannedRow, 0, len(t.order))
	for _, rid := range t.order {
		if t.tombstones[rid] {
			continue
		}
		offset := t.directory[rid]
		row, err := t.readAt(offset)
		if err != nil {
			return nil, err
		}
		if row.Op == rowcodec.OpDelete {
			continue
		}
		out = append(out, ScannedRow{Rid: rid, Row: row.Cols})
	}
	return out, nil
}

// Close releases the heap file handle.
func (t *Table) Close() error {
	if t.heapFile == nil {
		return nil
	}
	if err := t.heapFile.Close(); err != nil {
		return &dberrors.IOError{Op: "close", Path: t.heapPath, Err: err}
	}
	return nil
}
