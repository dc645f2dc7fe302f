// Package rowcodec encodes and decodes heap records as a single
// self-describing, LF-terminated JSON line, using the same JSON-tagged
// struct convention as the rest of this module.
package rowcodec

import (
	"encoding/json"
	"fmt"

	"minidb/internal/value"
)

// Row is one decoded heap record: either a live row (Op == "") carrying
// column values plus its RID, or a tombstone marker (Op == OpDelete) whose
// Cols is empty.
type Row struct {
	Rid  int64
	Op   string
	Cols map[string]value.Value
}

// OpDelete marks a tombstone record.
const OpDelete = "DELETE"

// wireValue is the on-disk shape of one Value: a one-letter type tag plus
// the payload in the field matching that tag, so "1" (string) and 1
// (integer) never round-trip to the same thing.
type wireValue struct {
	T string `json:"t"`
	I int64  `json:"i,omitempty"`
	S string `json:"s,omitempty"`
	B bool   `json:"b,omitempty"`
}

func toWire(v value.Value) wireValue {
	switch v.Kind {
	case value.KindInt:
		return wireValue{T: "i", I: v.Int}
	case value.KindString:
		return wireValue{T: "s", S: v.Str}
	case value.KindBool:
		return wireValue{T: "b", B: v.Bool}
	default:
		return wireValue{T: "n"}
	}
}

func fromWire(w wireValue) value.Value {
	switch w.T {
	case "i":
		return value.Int(w.I)
	case "s":
		return value.Str(w.S)
	case "b":
		return value.Bool(w.B)
	default:
		return value.Null
	}
}

// wireRecord is the JSON document written for one heap line. Unknown fields
// in an on-disk record are tolerated by encoding/json's default decode
// behavior (unrecognized keys are ignored), satisfying the forward-
// compatibility requirement.
type wireRecord struct {
	Rid  int64                `json:"_rid"`
	Op   string               `json:"_op,omitempty"`
	Cols map[string]wireValue `json:"cols,omitempty"`
}

// Encode renders r as one JSON line, including the trailing LF terminator.
func Encode(r Row) ([]byte, error) {
	wr := wireRecord{Rid: r.Rid, Op: r.Op}
	if len(r.Cols) > 0 {
		wr.Cols = make(map[string]wireValue, len(r.Cols))
		for name, v := range r.Cols {
			wr.Cols[name] = toWire(v)
		}
	}
	buf, err := json.Marshal(wr)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	buf = append(buf, '\n')
	return buf, nil
}

// Decode parses one line (without its trailing LF) back into a Row.
func Decode(line []byte) (Row, error) {
	var wr wireRecord
	if err := json.Unmarshal(line, &wr); err != nil {
		return Row{}, fmt.Errorf("decode row: %w", err)
	}
	row := Row{Rid: wr.Rid, Op: wr.Op}
	if len(wr.Cols) > 0 {
		row.Cols = make(map[string]value.Value, len(wr.Cols))
		for name, w := range wr.Cols {
			row.Cols[name] = fromWire(w)
		}
	}
	return row, nil
}

// Tombstone builds the marker record appended for a deleted RID.
func Tombstone(rid int64) Row {
	return Row{Rid: rid, Op: OpDelete}
}
