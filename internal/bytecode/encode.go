package bytecode

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/xirelogy/azura/internal/value"
)

const (
	wireMagic   = "azura"
	wireVersion = 1
)

// ErrMalformed is wrapped by every Unmarshal validation failure.
var ErrMalformed = errors.New("malformed chunk")

// Interner turns decoded string constants back into canonical objects.
type Interner interface {
	CopyString(chars string) *value.ObjString
}

type wireChunk struct {
	Magic     string      `cbor:"1,keyasint"`
	Version   uint8       `cbor:"2,keyasint"`
	Name      string      `cbor:"3,keyasint,omitempty"`
	Code      []byte      `cbor:"4,keyasint"`
	Lines     []int       `cbor:"5,keyasint"`
	Constants []wireValue `cbor:"6,keyasint,omitempty"`
}

type wireValue struct {
	Kind value.Kind `cbor:"1,keyasint"`
	Bool bool       `cbor:"2,keyasint,omitempty"`
	Num  float64    `cbor:"3,keyasint"`
	Str  *string    `cbor:"4,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a chunk to deterministic CBOR bytes.
func Marshal(c *Chunk) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("bytecode: marshal nil chunk")
	}
	w := wireChunk{
		Magic:   wireMagic,
		Version: wireVersion,
		Name:    c.Name,
		Code:    c.Code,
		Lines:   c.Lines,
	}
	for i, v := range c.Constants.Values() {
		wv, err := toWire(v)
		if err != nil {
			return nil, fmt.Errorf("bytecode: constant %d: %w", i, err)
		}
		w.Constants = append(w.Constants, wv)
	}
	return cborEncMode.Marshal(&w)
}

// Unmarshal decodes a chunk produced by Marshal, interning string
// constants through strs.
func Unmarshal(data []byte, strs Interner) (*Chunk, error) {
	var w wireChunk
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal chunk: %w", err)
	}
	if w.Magic != wireMagic {
		return nil, fmt.Errorf("bytecode: %w: bad magic %q", ErrMalformed, w.Magic)
	}
	if w.Version != wireVersion {
		return nil, fmt.Errorf("bytecode: %w: unsupported version %d", ErrMalformed, w.Version)
	}
	if len(w.Code) != len(w.Lines) {
		return nil, fmt.Errorf("bytecode: %w: %d code bytes but %d lines", ErrMalformed, len(w.Code), len(w.Lines))
	}
	if len(w.Constants) > MaxConstants {
		return nil, fmt.Errorf("bytecode: %w: %d constants", ErrMalformed, len(w.Constants))
	}

	c := New(w.Name)
	c.Code = w.Code
	c.Lines = w.Lines
	for i, wv := range w.Constants {
		v, err := fromWire(wv, strs)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %w: constant %d: %v", ErrMalformed, i, err)
		}
		c.AddConstant(v)
	}
	return c, nil
}

func toWire(v value.Value) (wireValue, error) {
	switch v.Kind() {
	case value.KindNil:
		return wireValue{Kind: value.KindNil}, nil
	case value.KindBool:
		b, _ := v.AsBool()
		return wireValue{Kind: value.KindBool, Bool: b}, nil
	case value.KindNumber:
		n, _ := v.AsNumber()
		return wireValue{Kind: value.KindNumber, Num: n}, nil
	}
	s, ok := v.AsString()
	if !ok {
		return wireValue{}, fmt.Errorf("cannot encode %s", v.TypeName())
	}
	chars := s.Chars()
	return wireValue{Kind: value.KindObject, Str: &chars}, nil
}

func fromWire(w wireValue, strs Interner) (value.Value, error) {
	switch w.Kind {
	case value.KindNil:
		return value.Nil(), nil
	case value.KindBool:
		return value.Bool(w.Bool), nil
	case value.KindNumber:
		return value.Number(w.Num), nil
	case value.KindObject:
		if w.Str == nil {
			return value.Nil(), fmt.Errorf("object constant without string payload")
		}
		if strs == nil {
			return value.Nil(), fmt.Errorf("no interner for string constant")
		}
		return value.Object(strs.CopyString(*w.Str)), nil
	default:
		return value.Nil(), fmt.Errorf("unknown kind %d", w.Kind)
	}
}
