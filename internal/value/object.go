package value

// ObjType identifies the concrete type behind an Obj.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	default:
		return "object"
	}
}

// Obj is a heap-allocated payload referenced by Object values.
type Obj interface {
	Type() ObjType
	String() string
}

// ObjString is an immutable string with its precomputed hash. Instances
// are created by object.Heap so that equal contents share one pointer.
type ObjString struct {
	chars string
	hash  uint64
}

// NewObjString allocates a string object without interning it.
func NewObjString(chars string, hash uint64) *ObjString {
	return &ObjString{chars: chars, hash: hash}
}

func (s *ObjString) Type() ObjType  { return ObjTypeString }
func (s *ObjString) String() string { return s.chars }
func (s *ObjString) Chars() string  { return s.chars }
func (s *ObjString) Hash() uint64   { return s.hash }
func (s *ObjString) Len() int       { return len(s.chars) }
