package value

import "strconv"

// Kind is the active tag of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union over nil, booleans, numbers and heap objects.
// Payloads are only reachable through the As* accessors, which check the tag.
type Value struct {
	kind Kind
	b    bool
	num  float64
	obj  Obj
}

func Nil() Value { return Value{kind: KindNil} }
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Object wraps a heap object. A nil object yields Nil.
func Object(o Obj) Value {
	if o == nil {
		return Nil()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsString reports whether v holds a string object.
func (v Value) IsString() bool {
	_, ok := v.AsString()
	return ok
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsObject() (Obj, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

func (v Value) AsString() (*ObjString, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	s, ok := v.obj.(*ObjString)
	return s, ok
}

// TypeName reports the script-visible type name of v.
func (v Value) TypeName() string {
	if v.kind == KindObject {
		return v.obj.Type().String()
	}
	return v.kind.String()
}

// Falsey reports whether v counts as false in a condition: nil and false do,
// everything else does not.
func Falsey(v Value) bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Equal compares by tag, then payload. Numbers use IEEE equality, so NaN is
// never equal to itself. Objects compare by identity, which is content
// equality for interned strings.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.num)
	case KindObject:
		return v.obj.String()
	default:
		return "<unknown>"
	}
}

// FormatNumber renders n in its shortest %g form.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
