// Package value implements the engine's dynamically-typed atom: a tagged
// variant that keeps INTEGER, STRING, BOOLEAN, and NULL distinct on disk and
// in memory so that a string spelling of a number never decodes as the
// number itself.
package value

import "fmt"

// Kind identifies which alternative of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindString
	KindBool
)

// String returns the kind's canonical name, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInt:
		return "INTEGER"
	case KindString:
		return "STRING"
	case KindBool:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// Value is the tagged atom every row cell holds. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind Kind
	Int  int64
	Str  string
	Bool bool
}

// Null is the shared NULL value.
var Null = Value{Kind: KindNull}

// Int wraps an int64 as an INTEGER value.
func Int(n int64) Value { return Value{Kind: KindInt, Int: n} }

// Str wraps a string as a STRING value. DATE literals are represented this
// way too; the engine never interprets their contents.
func Str(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool wraps a bool as a BOOLEAN value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsNull reports whether v is the NULL atom.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal reports whether two values have the same kind and content. Two NULLs
// are never Equal to each other in SQL semantics, but the engine uses Equal
// only for non-NULL equality probes (indexes never store a NULL key, and a
// NULL literal in a WHERE predicate is handled before Equal is reached);
// callers must exclude NULLs before calling this.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	case KindNull:
		return false
	default:
		return false
	}
}

// EncodeKey renders v as a type-tagged string suitable for use as a map key
// (index keys, uniqueness probes) so that INTEGER 7 and STRING "7" never
// collide.
func (v Value) EncodeKey() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("i:%d", v.Int)
	case KindString:
		return fmt.Sprintf("s:%s", v.Str)
	case KindBool:
		return fmt.Sprintf("b:%t", v.Bool)
	default:
		return "n:"
	}
}

// String renders v for display (CLI output, error messages), without type
// tagging.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "NULL"
	}
}
