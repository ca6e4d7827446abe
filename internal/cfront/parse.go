package cfront

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"ffigen/internal/cdecl"
	"ffigen/internal/diag"
	"ffigen/internal/source"
)

// Parse converts the file-scope declarations of file. Syntax problems are
// reported through rep; the returned error is only for a failed parse.
func Parse(ctx context.Context, file *source.File, rep diag.Reporter) ([]cdecl.Node, error) {
	if file == nil {
		return nil, fmt.Errorf("cfront: nil file")
	}
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("cfront: parse %s: %w", file.Path, err)
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	cv := &converter{
		src:  file.Content,
		file: file.ID,
		rep:  rep,
	}
	cv.unit(tree.RootNode())
	return cv.out, nil
}

type converter struct {
	src  []byte
	file source.FileID
	rep  diag.Reporter
	out  []cdecl.Node
}

func (cv *converter) span(n *sitter.Node) source.Span {
	if n == nil {
		return source.Span{File: cv.file}
	}
	return source.Span{File: cv.file, Start: n.StartByte(), End: n.EndByte()}
}

func (cv *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(cv.src)
}

func (cv *converter) report(code diag.Code, sev diag.Severity, n *sitter.Node, msg string) {
	diag.NewReportBuilder(cv.rep, sev, code, cv.span(n), msg).Emit()
}

// unit walks the children of a translation unit or of a preprocessor
// conditional, which may hold further declarations when the input was not
// preprocessed.
func (cv *converter) unit(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() {
			continue
		}
		if field := n.FieldNameForChild(i); field == "name" || field == "condition" {
			continue
		}
		switch child.Type() {
		case "declaration":
			cv.guard(child, cv.declaration)
		case "type_definition":
			cv.guard(child, cv.typeDefinition)
		case "function_definition":
			cv.guard(child, cv.functionDefinition)
		case "struct_specifier", "union_specifier", "enum_specifier":
			cv.guard(child, func(n *sitter.Node) error {
				spec, err := cv.typeSpecifier(n)
				if err != nil {
					return err
				}
				cv.out = append(cv.out, &cdecl.Decl{Type: spec, Sp: cv.span(n)})
				return nil
			})
		case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
			cv.unit(child)
		case "linkage_specification":
			if body := child.ChildByFieldName("body"); body != nil {
				cv.unit(body)
			}
		case "declaration_list":
			cv.unit(child)
		case "ERROR":
			cv.report(diag.SynErrorRegion, diag.SevError, child, "cannot parse this region")
		case "comment", "preproc_include", "preproc_def", "preproc_function_def", "preproc_call", "expression_statement":
		default:
			cv.report(diag.SynUnsupportedTop, diag.SevWarning, child,
				fmt.Sprintf("skipping unsupported top-level %s", child.Type()))
		}
	}
}

// guard converts one declaration, reporting syntax errors inside it instead
// of converting a damaged tree.
func (cv *converter) guard(n *sitter.Node, convert func(*sitter.Node) error) {
	if n.HasError() {
		bad := firstError(n)
		if bad == nil {
			bad = n
		}
		cv.report(diag.SynErrorRegion, diag.SevError, bad, "cannot parse declaration")
		return
	}
	if err := convert(n); err != nil {
		cv.report(codeOf(err), diag.SevError, n, err.Error())
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

type syntaxError struct {
	code diag.Code
	msg  string
}

func (e *syntaxError) Error() string { return e.msg }

func unsupported(format string, args ...any) error {
	return &syntaxError{code: diag.SynUnsupportedExpr, msg: fmt.Sprintf(format, args...)}
}

func codeOf(err error) diag.Code {
	var se *syntaxError
	if errors.As(err, &se) {
		return se.code
	}
	return diag.SynErrorRegion
}
