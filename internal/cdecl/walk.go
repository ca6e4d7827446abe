package cdecl

import (
	"fmt"
	"strings"
)

// DeclName returns the identifier a declarator chain declares, or "".
func DeclName(n Node) string {
	for n != nil {
		switch v := n.(type) {
		case *TypeDecl:
			return v.DeclName
		case *PtrDecl:
			n = v.Type
		case *ArrayDecl:
			n = v.Type
		case *FuncDecl:
			n = v.Type
		default:
			return ""
		}
	}
	return ""
}

// Dump renders a tree in an indented, one-node-per-line form for debugging
// and tests.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		fmt.Fprintf(b, "%s<nil>\n", indent)
		return
	}
	switch v := n.(type) {
	case *Typedef:
		fmt.Fprintf(b, "%sTypedef %s\n", indent, v.Name)
		dump(b, v.Type, depth+1)
	case *Decl:
		fmt.Fprintf(b, "%sDecl %s\n", indent, v.Name)
		dump(b, v.Type, depth+1)
	case *TypeDecl:
		fmt.Fprintf(b, "%sTypeDecl %s\n", indent, v.DeclName)
		dump(b, v.Type, depth+1)
	case *PtrDecl:
		fmt.Fprintf(b, "%sPtrDecl\n", indent)
		dump(b, v.Type, depth+1)
	case *ArrayDecl:
		fmt.Fprintf(b, "%sArrayDecl\n", indent)
		dump(b, v.Type, depth+1)
	case *FuncDecl:
		fmt.Fprintf(b, "%sFuncDecl\n", indent)
		for _, p := range v.Params {
			dump(b, p, depth+2)
		}
		dump(b, v.Type, depth+1)
	case *Typename:
		fmt.Fprintf(b, "%sTypename\n", indent)
		dump(b, v.Type, depth+1)
	case *IdentifierType:
		fmt.Fprintf(b, "%sIdentifierType %s\n", indent, strings.Join(v.Names, " "))
	case *Struct:
		fmt.Fprintf(b, "%sStruct %s complete=%v\n", indent, v.Name, v.Complete)
	case *Union:
		fmt.Fprintf(b, "%sUnion %s complete=%v\n", indent, v.Name, v.Complete)
	case *Enum:
		fmt.Fprintf(b, "%sEnum %s values=%d\n", indent, v.Name, len(v.Values))
	case *EllipsisParam:
		fmt.Fprintf(b, "%sEllipsisParam\n", indent)
	}
}
