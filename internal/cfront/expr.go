package cfront

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"ffigen/internal/cdecl"
)

func (cv *converter) expr(n *sitter.Node) (cdecl.Expr, error) {
	if n == nil {
		return nil, unsupported("missing expression")
	}
	sp := cv.span(n)
	switch n.Type() {
	case "number_literal":
		return &cdecl.Constant{Kind: cdecl.ConstInt, Value: strings.TrimSpace(cv.text(n)), Sp: sp}, nil
	case "char_literal":
		return &cdecl.Constant{Kind: cdecl.ConstChar, Value: cv.text(n), Sp: sp}, nil
	case "identifier":
		return &cdecl.ID{Name: cv.text(n), Sp: sp}, nil
	case "parenthesized_expression":
		if n.NamedChildCount() != 1 {
			return nil, unsupported("comma expression in constant")
		}
		return cv.expr(n.NamedChild(0))
	case "cast_expression":
		return cv.expr(n.ChildByFieldName("value"))
	case "unary_expression":
		arg, err := cv.expr(n.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		return &cdecl.UnaryOp{Op: operator(n), Expr: arg, Sp: sp}, nil
	case "binary_expression":
		left, err := cv.expr(n.ChildByFieldName("left"))
		if err != nil {
			return nil, err
		}
		right, err := cv.expr(n.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		return &cdecl.BinaryOp{Op: operator(n), Left: left, Right: right, Sp: sp}, nil
	}
	return nil, unsupported("unsupported constant expression %s", n.Type())
}

func operator(n *sitter.Node) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	return op.Type()
}
