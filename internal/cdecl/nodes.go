package cdecl

import (
	"fmt"

	"ffigen/internal/source"
)

// NodeKind discriminates Node implementations.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota
	KindTypedef
	KindDecl
	KindTypeDecl
	KindPtrDecl
	KindArrayDecl
	KindFuncDecl
	KindTypename
	KindIdentifierType
	KindStruct
	KindUnion
	KindEnum
	KindEllipsisParam
)

func (k NodeKind) String() string {
	switch k {
	case KindTypedef:
		return "Typedef"
	case KindDecl:
		return "Decl"
	case KindTypeDecl:
		return "TypeDecl"
	case KindPtrDecl:
		return "PtrDecl"
	case KindArrayDecl:
		return "ArrayDecl"
	case KindFuncDecl:
		return "FuncDecl"
	case KindTypename:
		return "Typename"
	case KindIdentifierType:
		return "IdentifierType"
	case KindStruct:
		return "Struct"
	case KindUnion:
		return "Union"
	case KindEnum:
		return "Enum"
	case KindEllipsisParam:
		return "EllipsisParam"
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// Node is a declaration tree node. The set of implementations is closed.
type Node interface {
	Kind() NodeKind
	Span() source.Span
	node()
}

// StorageClass of a Decl.
type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
)

type (
	// Typedef: `typedef <Type>` where Type ends in a TypeDecl named Name.
	Typedef struct {
		Name string
		Type Node
		Sp   source.Span
	}

	// Decl is a named declaration: a function prototype, a variable, or a
	// bare `struct S {...};` when Name is empty.
	Decl struct {
		Name    string
		Storage StorageClass
		Type    Node
		Sp      source.Span
	}

	// TypeDecl terminates a declarator chain. DeclName is the declared
	// identifier; it is empty for abstract declarators.
	TypeDecl struct {
		DeclName string
		Type     Node
		Sp       source.Span
	}

	PtrDecl struct {
		Type Node
		Sp   source.Span
	}

	// ArrayDecl has a nil Dim for `[]`.
	ArrayDecl struct {
		Type Node
		Dim  Expr
		Sp   source.Span
	}

	// FuncDecl params are *Decl, *Typename or *EllipsisParam. Type is the
	// return declarator.
	FuncDecl struct {
		Params []Node
		Type   Node
		Sp     source.Span
	}

	// Typename is an abstract declaration used for unnamed parameters.
	Typename struct {
		Name string
		Type Node
		Sp   source.Span
	}

	IdentifierType struct {
		Names []string
		Sp    source.Span
	}

	// Struct with Complete=false is a reference or forward declaration.
	Struct struct {
		Name     string
		Complete bool
		Sp       source.Span
	}

	Union struct {
		Name     string
		Complete bool
		Sp       source.Span
	}

	// Enum with Values=nil is a reference.
	Enum struct {
		Name   string
		Values []*Enumerator
		Sp     source.Span
	}

	Enumerator struct {
		Name  string
		Value Expr
		Sp    source.Span
	}

	EllipsisParam struct {
		Sp source.Span
	}
)

func (*Typedef) Kind() NodeKind        { return KindTypedef }
func (*Decl) Kind() NodeKind           { return KindDecl }
func (*TypeDecl) Kind() NodeKind       { return KindTypeDecl }
func (*PtrDecl) Kind() NodeKind        { return KindPtrDecl }
func (*ArrayDecl) Kind() NodeKind      { return KindArrayDecl }
func (*FuncDecl) Kind() NodeKind       { return KindFuncDecl }
func (*Typename) Kind() NodeKind       { return KindTypename }
func (*IdentifierType) Kind() NodeKind { return KindIdentifierType }
func (*Struct) Kind() NodeKind         { return KindStruct }
func (*Union) Kind() NodeKind          { return KindUnion }
func (*Enum) Kind() NodeKind           { return KindEnum }
func (*EllipsisParam) Kind() NodeKind  { return KindEllipsisParam }

func (n *Typedef) Span() source.Span        { return n.Sp }
func (n *Decl) Span() source.Span           { return n.Sp }
func (n *TypeDecl) Span() source.Span       { return n.Sp }
func (n *PtrDecl) Span() source.Span        { return n.Sp }
func (n *ArrayDecl) Span() source.Span      { return n.Sp }
func (n *FuncDecl) Span() source.Span       { return n.Sp }
func (n *Typename) Span() source.Span       { return n.Sp }
func (n *IdentifierType) Span() source.Span { return n.Sp }
func (n *Struct) Span() source.Span         { return n.Sp }
func (n *Union) Span() source.Span          { return n.Sp }
func (n *Enum) Span() source.Span           { return n.Sp }
func (n *EllipsisParam) Span() source.Span  { return n.Sp }

func (*Typedef) node()        {}
func (*Decl) node()           {}
func (*TypeDecl) node()       {}
func (*PtrDecl) node()        {}
func (*ArrayDecl) node()      {}
func (*FuncDecl) node()       {}
func (*Typename) node()       {}
func (*IdentifierType) node() {}
func (*Struct) node()         {}
func (*Union) node()          {}
func (*Enum) node()           {}
func (*EllipsisParam) node()  {}
