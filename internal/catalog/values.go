package catalog

import (
	"unicode/utf8"

	"minidb/internal/dberrors"
	"minidb/internal/value"
)

// CheckValueType verifies that v matches column c's declared type. NULL is
// always accepted here; nullability is a separate constraint checked by the
// executor against NOT_NULL. Values are never coerced between types.
func CheckValueType(table string, c *Column, v value.Value) error {
	if v.IsNull() {
		return nil
	}
	switch c.Type {
	case TypeInteger:
		if v.Kind != value.KindInt {
			return &dberrors.TypeError{Table: table, Column: c.Name, Want: string(TypeInteger), Got: v.Kind.String()}
		}
	case TypeVarchar:
		if v.Kind != value.KindString {
			return &dberrors.TypeError{Table: table, Column: c.Name, Want: string(TypeVarchar), Got: v.Kind.String()}
		}
		if utf8.RuneCountInString(v.Str) > c.VarcharLength {
			return &dberrors.TypeError{Table: table, Column: c.Name, Want: "VARCHAR length <= " + itoa(c.VarcharLength), Got: "length " + itoa(utf8.RuneCountInString(v.Str))}
		}
	case TypeText, TypeDate:
		if v.Kind != value.KindString {
			return &dberrors.TypeError{Table: table, Column: c.Name, Want: string(c.Type), Got: v.Kind.String()}
		}
	case TypeBoolean:
		if v.Kind != value.KindBool {
			return &dberrors.TypeError{Table: table, Column: c.Name, Want: string(TypeBoolean), Got: v.Kind.String()}
		}
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
