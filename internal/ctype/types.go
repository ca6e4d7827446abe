package ctype

import "fmt"

// Kind enumerates the variants of Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindNamed
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindFunc
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPrimitive:
		return "primitive"
	case KindNamed:
		return "named"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindFunc:
		return "func"
	case KindCallback:
		return "callback"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a canonical C type. The set of implementations is closed.
type Type interface {
	Kind() Kind
	String() string
	sealed()
}

// Tag is an FFI primitive. The values match the type names understood by
// quickjs-ffi, except the 128-bit integers, which it cannot marshal.
type Tag string

const (
	TagVoid              Tag = "void"
	TagChar              Tag = "char"
	TagUint8             Tag = "uint8"
	TagSint8             Tag = "sint8"
	TagUint16            Tag = "uint16"
	TagSint16            Tag = "sint16"
	TagUint32            Tag = "uint32"
	TagSint32            Tag = "sint32"
	TagUint64            Tag = "uint64"
	TagSint64            Tag = "sint64"
	TagUint128           Tag = "uint128"
	TagSint128           Tag = "sint128"
	TagFloat             Tag = "float"
	TagDouble            Tag = "double"
	TagLongDouble        Tag = "longdouble"
	TagPointer           Tag = "pointer"
	TagString            Tag = "string"
	TagComplexFloat      Tag = "complex_float"
	TagComplexDouble     Tag = "complex_double"
	TagComplexLongDouble Tag = "complex_longdouble"
)

// Tags lists every primitive tag in declaration order.
var Tags = []Tag{
	TagVoid, TagChar, TagUint8, TagSint8, TagUint16, TagSint16, TagUint32, TagSint32,
	TagUint64, TagSint64, TagUint128, TagSint128, TagFloat, TagDouble, TagLongDouble, TagPointer, TagString,
	TagComplexFloat, TagComplexDouble, TagComplexLongDouble,
}

// Wire returns the tag used at the FFI boundary. char travels as a byte.
func (t Tag) Wire() Tag {
	if t == TagChar {
		return TagSint8
	}
	return t
}

type (
	// Primitive is a scalar with a canonical FFI tag.
	Primitive struct {
		Tag Tag
	}

	// Named refers to a registry entry by name.
	Named struct {
		Name string
	}

	Pointer struct {
		Elem Type
	}

	// Array is produced by array declarators. Len is -1 when the dimension
	// is absent or not a constant.
	Array struct {
		Elem Type
		Len  int64
	}

	// Record carries what the generator knows about a struct or union:
	// identity and size, never fields.
	Record struct {
		Name      string
		Complete  bool
		Anonymous bool
		// Spelling is the C text used in sizeof probes, e.g. "struct S" or
		// a typedef name for anonymous records.
		Spelling string
		// Size is filled by the size query; -1 when unknown.
		Size int64
	}

	Struct struct {
		Record
	}

	Union struct {
		Record
	}

	Enumerator struct {
		Name  string
		Value int64
	}

	Enum struct {
		Name      string
		Anonymous bool
		Items     []Enumerator
	}

	// FuncSignature describes a function or the target of a function
	// pointer. Variadic records that an ellipsis was dropped from Params.
	FuncSignature struct {
		Name       string
		Return     Type
		Params     []Type
		ParamNames []string
		Variadic   bool
	}

	// Callback is the inlined form of a pointer to a function, produced by
	// simplification.
	Callback struct {
		Return   Type
		Params   []Type
		Variadic bool
	}
)

func (Primitive) Kind() Kind      { return KindPrimitive }
func (Named) Kind() Kind          { return KindNamed }
func (Pointer) Kind() Kind        { return KindPointer }
func (Array) Kind() Kind          { return KindArray }
func (*Struct) Kind() Kind        { return KindStruct }
func (*Union) Kind() Kind         { return KindUnion }
func (*Enum) Kind() Kind          { return KindEnum }
func (*FuncSignature) Kind() Kind { return KindFunc }
func (Callback) Kind() Kind       { return KindCallback }

func (Primitive) sealed()      {}
func (Named) sealed()          {}
func (Pointer) sealed()        {}
func (Array) sealed()          {}
func (*Struct) sealed()        {}
func (*Union) sealed()         {}
func (*Enum) sealed()          {}
func (*FuncSignature) sealed() {}
func (Callback) sealed()       {}

// Prim is a shorthand for Primitive{Tag: tag}.
func Prim(tag Tag) Primitive {
	return Primitive{Tag: tag}
}

// Void is the void primitive.
var Void = Primitive{Tag: TagVoid}

// NewStruct returns an incomplete struct with unknown size.
func NewStruct(name string) *Struct {
	return &Struct{Record{Name: name, Spelling: "struct " + name, Size: -1}}
}

// NewUnion returns an incomplete union with unknown size.
func NewUnion(name string) *Union {
	return &Union{Record{Name: name, Spelling: "union " + name, Size: -1}}
}

// AsRecord returns the record part of a struct or union.
func AsRecord(t Type) (*Record, bool) {
	switch v := t.(type) {
	case *Struct:
		return &v.Record, true
	case *Union:
		return &v.Record, true
	}
	return nil, false
}

// IsVoid reports whether t is the void primitive.
func IsVoid(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Tag == TagVoid
}

// IsChar reports whether t is plain char.
func IsChar(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Tag == TagChar
}
