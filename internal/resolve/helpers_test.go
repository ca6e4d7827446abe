package resolve

import (
	"strings"

	"ffigen/internal/cdecl"
)

func ident(spelling string) *cdecl.IdentifierType {
	return &cdecl.IdentifierType{Names: strings.Fields(spelling)}
}

func tdecl(name string, t cdecl.Node) *cdecl.TypeDecl {
	return &cdecl.TypeDecl{DeclName: name, Type: t}
}

func ptr(t cdecl.Node) *cdecl.PtrDecl {
	return &cdecl.PtrDecl{Type: t}
}

func param(t cdecl.Node) *cdecl.Typename {
	return &cdecl.Typename{Type: t}
}

// proto builds `ret name(params)`.
func proto(name string, ret cdecl.Node, params ...cdecl.Node) *cdecl.Decl {
	return &cdecl.Decl{Name: name, Type: &cdecl.FuncDecl{Params: params, Type: tdecl(name, ret)}}
}

func typedef(name string, t cdecl.Node) *cdecl.Typedef {
	return &cdecl.Typedef{Name: name, Type: t}
}

func lit(v string) *cdecl.Constant {
	return &cdecl.Constant{Kind: cdecl.ConstInt, Value: v}
}

func chr(v string) *cdecl.Constant {
	return &cdecl.Constant{Kind: cdecl.ConstChar, Value: v}
}

func enumerator(name string, v cdecl.Expr) *cdecl.Enumerator {
	return &cdecl.Enumerator{Name: name, Value: v}
}
