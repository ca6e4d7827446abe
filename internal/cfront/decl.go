package cfront

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"ffigen/internal/cdecl"
	"ffigen/internal/ctype"
	"ffigen/internal/diag"
)

func (cv *converter) declaration(n *sitter.Node) error {
	spec, err := cv.typeSpecifier(n.ChildByFieldName("type"))
	if err != nil {
		return err
	}
	storage := cv.storage(n)
	declarators := fieldChildren(n, "declarator")
	if len(declarators) == 0 {
		cv.out = append(cv.out, &cdecl.Decl{Storage: storage, Type: spec, Sp: cv.span(n)})
		return nil
	}
	for _, d := range declarators {
		if d.Type() == "init_declarator" {
			d = d.ChildByFieldName("declarator")
		}
		typ, name, err := cv.declarator(d, spec)
		if err != nil {
			return err
		}
		cv.out = append(cv.out, &cdecl.Decl{Name: name, Storage: storage, Type: typ, Sp: cv.span(n)})
	}
	return nil
}

func (cv *converter) typeDefinition(n *sitter.Node) error {
	spec, err := cv.typeSpecifier(n.ChildByFieldName("type"))
	if err != nil {
		return err
	}
	for _, d := range fieldChildren(n, "declarator") {
		typ, name, err := cv.declarator(d, spec)
		if err != nil {
			return err
		}
		if name == "" {
			cv.report(diag.SynMissingName, diag.SevError, d, "typedef without a name")
			continue
		}
		cv.out = append(cv.out, &cdecl.Typedef{Name: name, Type: typ, Sp: cv.span(n)})
	}
	return nil
}

// functionDefinition keeps the prototype of an exported definition.
// Static definitions have no symbol in the shared library.
func (cv *converter) functionDefinition(n *sitter.Node) error {
	storage := cv.storage(n)
	if storage == cdecl.StorageStatic {
		cv.report(diag.SynSkippedDefinition, diag.SevInfo, n.ChildByFieldName("declarator"), "static function definition skipped")
		return nil
	}
	spec, err := cv.typeSpecifier(n.ChildByFieldName("type"))
	if err != nil {
		return err
	}
	typ, name, err := cv.declarator(n.ChildByFieldName("declarator"), spec)
	if err != nil {
		return err
	}
	cv.out = append(cv.out, &cdecl.Decl{Name: name, Storage: storage, Type: typ, Sp: cv.span(n)})
	return nil
}

func (cv *converter) storage(n *sitter.Node) cdecl.StorageClass {
	storage := cdecl.StorageNone
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "storage_class_specifier" {
			continue
		}
		switch strings.TrimSpace(cv.text(child)) {
		case "static":
			return cdecl.StorageStatic
		case "extern":
			storage = cdecl.StorageExtern
		}
	}
	return storage
}

// declarator applies a declarator to spec. Tree-sitter nests declarators
// outermost first, which is the order in which the C type is built up from
// the specifier, so each level wraps the result of the previous one. The
// identifier at the bottom names the TypeDecl that holds spec.
func (cv *converter) declarator(d *sitter.Node, spec cdecl.Node) (cdecl.Node, string, error) {
	td := &cdecl.TypeDecl{Type: spec, Sp: spec.Span()}
	var cur cdecl.Node = td
	name := ""
	for d != nil {
		switch d.Type() {
		case "identifier", "type_identifier", "field_identifier", "primitive_type":
			name = cv.text(d)
			td.Sp = cv.span(d)
			d = nil
		case "pointer_declarator", "abstract_pointer_declarator":
			cur = &cdecl.PtrDecl{Type: cur, Sp: cv.span(d)}
			d = d.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			params, err := cv.parameters(d.ChildByFieldName("parameters"))
			if err != nil {
				return nil, "", err
			}
			cur = &cdecl.FuncDecl{Params: params, Type: cur, Sp: cv.span(d)}
			d = d.ChildByFieldName("declarator")
		case "array_declarator", "abstract_array_declarator":
			var dim cdecl.Expr
			if size := d.ChildByFieldName("size"); size != nil && size.Type() != "*" {
				// a dimension we cannot convert leaves the array unsized
				if e, err := cv.expr(size); err == nil {
					dim = e
				}
			}
			cur = &cdecl.ArrayDecl{Type: cur, Dim: dim, Sp: cv.span(d)}
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil, "", unsupported("unsupported declarator %s", d.Type())
		}
	}
	td.DeclName = name
	return cur, name, nil
}

// innerDeclarator returns the declarator wrapped by parentheses or
// attributes.
func innerDeclarator(d *sitter.Node) *sitter.Node {
	for i := 0; i < int(d.NamedChildCount()); i++ {
		child := d.NamedChild(i)
		switch child.Type() {
		case "attribute_specifier", "attribute_declaration", "ms_call_modifier", "ms_pointer_modifier", "type_qualifier", "comment":
			continue
		}
		return child
	}
	return nil
}

func (cv *converter) parameters(list *sitter.Node) ([]cdecl.Node, error) {
	if list == nil {
		return nil, nil
	}
	var params []cdecl.Node
	for i := 0; i < int(list.ChildCount()); i++ {
		child := list.Child(i)
		switch child.Type() {
		case "parameter_declaration":
			spec, err := cv.typeSpecifier(child.ChildByFieldName("type"))
			if err != nil {
				return nil, err
			}
			d := child.ChildByFieldName("declarator")
			if d == nil {
				params = append(params, &cdecl.Typename{
					Type: &cdecl.TypeDecl{Type: spec, Sp: spec.Span()},
					Sp:   cv.span(child),
				})
				continue
			}
			typ, name, err := cv.declarator(d, spec)
			if err != nil {
				return nil, err
			}
			if name == "" {
				params = append(params, &cdecl.Typename{Type: typ, Sp: cv.span(child)})
				continue
			}
			params = append(params, &cdecl.Decl{Name: name, Type: typ, Sp: cv.span(child)})
		case "variadic_parameter", "...":
			params = append(params, &cdecl.EllipsisParam{Sp: cv.span(child)})
		case "identifier":
			return nil, unsupported("K&R parameter list")
		}
	}
	return params, nil
}

func (cv *converter) typeSpecifier(n *sitter.Node) (cdecl.Node, error) {
	if n == nil {
		return nil, unsupported("declaration without a type")
	}
	sp := cv.span(n)
	switch n.Type() {
	case "primitive_type", "type_identifier", "sized_type_specifier":
		words := strings.Fields(cv.text(n))
		return &cdecl.IdentifierType{Names: []string{ctype.NormalizeSpelling(words)}, Sp: sp}, nil
	case "struct_specifier":
		return &cdecl.Struct{
			Name:     cv.text(n.ChildByFieldName("name")),
			Complete: n.ChildByFieldName("body") != nil,
			Sp:       sp,
		}, nil
	case "union_specifier":
		return &cdecl.Union{
			Name:     cv.text(n.ChildByFieldName("name")),
			Complete: n.ChildByFieldName("body") != nil,
			Sp:       sp,
		}, nil
	case "enum_specifier":
		return cv.enumSpecifier(n)
	case "macro_type_specifier":
		return nil, unsupported("macro used as a type")
	}
	return nil, unsupported("unsupported type specifier %s", n.Type())
}

func (cv *converter) enumSpecifier(n *sitter.Node) (cdecl.Node, error) {
	en := &cdecl.Enum{Name: cv.text(n.ChildByFieldName("name")), Sp: cv.span(n)}
	body := n.ChildByFieldName("body")
	if body == nil {
		return en, nil
	}
	en.Values = []*cdecl.Enumerator{}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		item := body.NamedChild(i)
		if item.Type() != "enumerator" {
			continue
		}
		e := &cdecl.Enumerator{Name: cv.text(item.ChildByFieldName("name")), Sp: cv.span(item)}
		if v := item.ChildByFieldName("value"); v != nil {
			expr, err := cv.expr(v)
			if err != nil {
				return nil, err
			}
			e.Value = expr
		}
		en.Values = append(en.Values, e)
	}
	return en, nil
}

func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}
