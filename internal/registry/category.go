package registry

import "fmt"

// Category is the kind of registry entry.
type Category uint8

const (
	CatConstant Category = iota
	CatType
	CatFunc
	CatStruct
	CatUnion
	CatEnum
	CatArray
	CatTypedefStruct
	CatTypedefUnion
	CatTypedefEnum
	CatTypedefFunc
	CatTypedefPointer
)

func (c Category) String() string {
	switch c {
	case CatConstant:
		return "constant"
	case CatType:
		return "type-decl"
	case CatFunc:
		return "func-decl"
	case CatStruct:
		return "struct-decl"
	case CatUnion:
		return "union-decl"
	case CatEnum:
		return "enum-decl"
	case CatArray:
		return "array-decl"
	case CatTypedefStruct:
		return "typedef-struct"
	case CatTypedefUnion:
		return "typedef-union"
	case CatTypedefEnum:
		return "typedef-enum"
	case CatTypedefFunc:
		return "typedef-func"
	case CatTypedefPointer:
		return "typedef-pointer"
	}
	return fmt.Sprintf("Category(%d)", c)
}

// Namespace is a C name space. Struct, union and enum tags live apart from
// ordinary identifiers.
type Namespace uint8

const (
	NSOrdinary Namespace = iota
	NSTag
)

func (c Category) Namespace() Namespace {
	switch c {
	case CatStruct, CatUnion, CatEnum:
		return NSTag
	}
	return NSOrdinary
}

// IsTypeName reports whether entries of c name a type usable in a
// declaration specifier.
func (c Category) IsTypeName() bool {
	switch c {
	case CatType, CatArray, CatTypedefStruct, CatTypedefUnion, CatTypedefEnum, CatTypedefFunc, CatTypedefPointer:
		return true
	}
	return false
}

// typeNameCats lists the categories searched by LookupType.
var typeNameCats = []Category{
	CatType, CatArray, CatTypedefStruct, CatTypedefUnion, CatTypedefEnum, CatTypedefFunc, CatTypedefPointer,
}
