package cdecl

import "ffigen/internal/source"

// Expr is an enumerator or array dimension expression.
type Expr interface {
	Span() source.Span
	expr()
}

// ConstKind tells integer literals from character literals.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstChar
)

type (
	// Constant keeps the literal text as written, suffixes and quotes
	// included.
	Constant struct {
		Kind  ConstKind
		Value string
		Sp    source.Span
	}

	ID struct {
		Name string
		Sp   source.Span
	}

	UnaryOp struct {
		Op   string
		Expr Expr
		Sp   source.Span
	}

	BinaryOp struct {
		Op    string
		Left  Expr
		Right Expr
		Sp    source.Span
	}
)

func (e *Constant) Span() source.Span { return e.Sp }
func (e *ID) Span() source.Span       { return e.Sp }
func (e *UnaryOp) Span() source.Span  { return e.Sp }
func (e *BinaryOp) Span() source.Span { return e.Sp }

func (*Constant) expr() {}
func (*ID) expr()       {}
func (*UnaryOp) expr()  {}
func (*BinaryOp) expr() {}
